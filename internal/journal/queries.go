package journal

// CreateSessionsSQL creates the sessions table.
const CreateSessionsSQL = `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		exercise TEXT NOT NULL DEFAULT '',
		form TEXT NOT NULL DEFAULT '',
		state TEXT NOT NULL,
		outcome TEXT NOT NULL,
		local_path TEXT NOT NULL DEFAULT '',
		stored_path TEXT NOT NULL DEFAULT '',
		error TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	)
`

// CreateSessionsIndexSQL indexes sessions by recency.
const CreateSessionsIndexSQL = `CREATE INDEX IF NOT EXISTS idx_sessions_updated_at ON sessions(updated_at)`

// UpsertSessionSQL inserts a session or moves an existing one forward.
// Paths already known are kept when the newer event does not carry them.
const UpsertSessionSQL = `
	INSERT INTO sessions (id, exercise, form, state, outcome, local_path, stored_path, error, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		exercise = CASE WHEN excluded.exercise != '' THEN excluded.exercise ELSE sessions.exercise END,
		form = CASE WHEN excluded.form != '' THEN excluded.form ELSE sessions.form END,
		state = excluded.state,
		outcome = excluded.outcome,
		local_path = CASE WHEN excluded.local_path != '' THEN excluded.local_path ELSE sessions.local_path END,
		stored_path = CASE WHEN excluded.stored_path != '' THEN excluded.stored_path ELSE sessions.stored_path END,
		error = excluded.error,
		updated_at = excluded.updated_at
`

const selectSessionColumns = `id, exercise, form, state, outcome, local_path, stored_path, error, created_at, updated_at`

// SelectRecentSessionsSQL lists the newest sessions first.
const SelectRecentSessionsSQL = `SELECT ` + selectSessionColumns + ` FROM sessions ORDER BY updated_at DESC, id LIMIT ?`

// SelectUnsentSessionsSQL lists saved recordings the receiver never confirmed.
const SelectUnsentSessionsSQL = `
	SELECT ` + selectSessionColumns + ` FROM sessions
	WHERE outcome = 'failed' AND local_path != '' AND stored_path = ''
	ORDER BY updated_at DESC, id
`

// SelectSessionSQL loads one session.
const SelectSessionSQL = `SELECT ` + selectSessionColumns + ` FROM sessions WHERE id = ?`
