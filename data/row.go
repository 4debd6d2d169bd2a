package data

// Row is one result row, positionally aligned with the DataFrame columns.
type Row struct {
	values []TableValue
}

// NewRow wraps values. The slice is owned by the row afterwards.
func NewRow(values []TableValue) Row {
	return Row{values: values}
}

func (r Row) Len() int                 { return len(r.values) }
func (r Row) Values() []TableValue     { return r.values }
func (r Row) Get(i int) TableValue     { return r.values[i] }
func (r *Row) Set(i int, v TableValue) { r.values[i] = v }

// Push appends v as the next column value.
func (r *Row) Push(v TableValue) {
	r.values = append(r.values, v)
}

func (r Row) release() {
	for _, v := range r.values {
		if v.kind == KindList && v.list != nil {
			v.list.Release()
		}
	}
}
