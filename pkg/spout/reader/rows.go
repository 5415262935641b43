package reader

import "github.com/openspout/openspout-sub000/pkg/spout/models"

// ReadAll drains a row iterator. It is meant for small sheets and tests.
func ReadAll(it RowIterator) ([]*models.Row, error) {
	var rows []*models.Row
	for it.Next() {
		rows = append(rows, it.Row())
	}
	return rows, it.Err()
}

// FindSheet returns the sheet with the given name, or nil.
func FindSheet(r Reader, name string) (Sheet, error) {
	it := r.Sheets()
	for it.Next() {
		if it.Sheet().Name() == name {
			return it.Sheet(), nil
		}
	}
	return nil, it.Err()
}
