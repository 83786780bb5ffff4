package dbgen

type rowScanner interface {
	Scan(dest ...interface{}) error
}

type rowsScanner interface {
	rowScanner
	Next() bool
	Close() error
	Err() error
}

func collectRows[T any](rows rowsScanner, scan func(rowScanner) (T, error)) ([]T, error) {
	defer rows.Close()
	var items []T
	for rows.Next() {
		i, err := scan(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
