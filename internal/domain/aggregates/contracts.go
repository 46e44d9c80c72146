package aggregates

// Concurrency names the write guard an aggregate applies.
type Concurrency string

const (
	// VersionCAS writes succeed only while the row version still matches the version the caller read.
	VersionCAS Concurrency = "version_cas"
	// ReadOnly aggregates never write.
	ReadOnly Concurrency = "read_only"
)

// Contract describes the tables an aggregate owns and how it guards writes to them.
type Contract struct {
	Name        string
	Tables      []string
	Concurrency Concurrency
	Notes       string
}

// Aggregate is implemented by every store that owns a consistency boundary.
type Aggregate interface {
	Contract() Contract
}

// Owns reports whether table is inside the aggregate's boundary.
func (c Contract) Owns(table string) bool {
	for _, t := range c.Tables {
		if t == table {
			return true
		}
	}
	return false
}

func (c Contract) Writable() bool { return c.Concurrency == VersionCAS }
