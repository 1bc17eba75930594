// Package batch describes per-record outcomes of a bulk hotel load.
package batch

// ItemStatus is the processing outcome of a single record.
type ItemStatus string

// Record status values.
const (
	StatusOK    ItemStatus = "ok"
	StatusError ItemStatus = "error"
)

// Result is the outcome of loading one record of the source file.
type Result struct {
	pos    int
	id     int64
	status ItemStatus
	err    error
}

// NewOK creates a successful result for the record at pos.
func NewOK(pos int, id int64) Result { return Result{pos: pos, id: id, status: StatusOK} }

// NewError creates a failed result. id is zero when the record had none.
func NewError(pos int, id int64, err error) Result {
	return Result{pos: pos, id: id, status: StatusError, err: err}
}

// Pos returns the zero-based position of the record in the source.
func (r Result) Pos() int { return r.pos }

// HotelID returns the record's hotel_id.
func (r Result) HotelID() int64 { return r.id }

// Status returns the processing outcome.
func (r Result) Status() ItemStatus { return r.status }

// Err returns the error, if any.
func (r Result) Err() error { return r.err }

// Summary counts outcomes.
type Summary struct {
	Loaded int
	Failed int
}

// Summarize counts ok and failed results.
func Summarize(results []Result) Summary {
	var s Summary
	for _, r := range results {
		if r.status == StatusOK {
			s.Loaded++
		} else {
			s.Failed++
		}
	}
	return s
}

// FirstError returns the first failure in source order, or nil.
func FirstError(results []Result) error {
	for _, r := range results {
		if r.status == StatusError {
			return r.err
		}
	}
	return nil
}
