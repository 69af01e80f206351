package store

import "reflect"

// getCols returns the db-tagged column names of a struct, in field order,
// so SELECT lists always line up with RowToStructByName.
func getCols(v any) []string {
	t := reflect.TypeOf(v)

	cols := make([]string, 0, t.NumField())

	for i := 0; i < t.NumField(); i++ {
		tag := t.Field(i).Tag.Get("db")

		if tag == "" || tag == "-" {
			continue
		}

		cols = append(cols, tag)
	}

	return cols
}
