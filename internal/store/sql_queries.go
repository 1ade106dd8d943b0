package store

const (
	insertRecord = `INSERT INTO secret_records (id, value, description, created_at, expires_at, active)
		VALUES ($1, $2, $3, $4, $5, TRUE);`

	selectActiveRecord = `SELECT id, value, description, created_at, expires_at, active
		FROM secret_records
		WHERE id = $1 AND active;`

	selectActiveRecords = `SELECT id, value, description, created_at, expires_at, active
		FROM secret_records
		WHERE active;`

	retireRecord = `UPDATE secret_records
		SET active = FALSE
		WHERE id = $1 AND active;`

	recordExists = `SELECT EXISTS (SELECT 1 FROM secret_records WHERE id = $1);`
)
