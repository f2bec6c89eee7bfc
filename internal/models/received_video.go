package models

// ReceivedVideo records one file accepted by the receiver. StoredPath is
// unique: a re-upload under the same name updates the existing row.
type ReceivedVideo struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	Exercise   string `json:"exercise" gorm:"index"`
	Form       string `json:"form" gorm:"index"`
	FileName   string `json:"file_name"`
	StoredPath string `json:"stored_path" gorm:"uniqueIndex"`
	SizeBytes  int64  `json:"size_bytes"`
	ClientIP   string `json:"client_ip"`
	Uploads    int    `json:"uploads" gorm:"default:1"`
	CreateTime string `json:"create_time"`
	UpdateTime string `json:"update_time"`
	IsDeleted  bool   `json:"is_deleted,omitempty" gorm:"default:false;index"`
}
