package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Bucket summarises the videos stored for one exercise/form pair.
type Bucket struct {
	Exercise string
	Form     string
	Count    int
	Sizes    []int64
}

// Overview is the per-bucket video count of a dataset directory.
type Overview struct {
	Buckets []Bucket
	Total   int
}

// Count returns the number of videos in the given bucket, zero if absent.
func (o *Overview) Count(exercise, form string) int {
	for _, b := range o.Buckets {
		if b.Exercise == exercise && b.Form == form {
			return b.Count
		}
	}
	return 0
}

// ExerciseTotal sums the counts of every form recorded for exercise.
func (o *Overview) ExerciseTotal(exercise string) int {
	total := 0
	for _, b := range o.Buckets {
		if b.Exercise == exercise {
			total += b.Count
		}
	}
	return total
}

// Scan walks a dataset directory laid out as <dir>/<exercise>/<form>/<files>
// and counts the video files in each bucket. A missing directory yields an
// empty overview.
func Scan(dir string) (*Overview, error) {
	ov := &Overview{}

	exercises, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return ov, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset %s: %w", dir, err)
	}

	for _, ex := range exercises {
		if !ex.IsDir() {
			continue
		}
		forms, err := os.ReadDir(filepath.Join(dir, ex.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", ex.Name(), err)
		}
		for _, fm := range forms {
			if !fm.IsDir() {
				continue
			}
			b, err := scanBucket(filepath.Join(dir, ex.Name(), fm.Name()))
			if err != nil {
				return nil, err
			}
			b.Exercise = ex.Name()
			b.Form = fm.Name()
			ov.Buckets = append(ov.Buckets, b)
			ov.Total += b.Count
		}
	}

	sort.Slice(ov.Buckets, func(i, j int) bool {
		if ov.Buckets[i].Exercise != ov.Buckets[j].Exercise {
			return ov.Buckets[i].Exercise < ov.Buckets[j].Exercise
		}
		return ov.Buckets[i].Form < ov.Buckets[j].Form
	})
	return ov, nil
}

func scanBucket(dir string) (Bucket, error) {
	var b Bucket
	entries, err := os.ReadDir(dir)
	if err != nil {
		return b, fmt.Errorf("failed to read %s: %w", dir, err)
	}
	for _, e := range entries {
		if e.IsDir() || !HasVideoExtension(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			// Removed between ReadDir and Info.
			continue
		}
		b.Count++
		b.Sizes = append(b.Sizes, info.Size())
	}
	return b, nil
}
