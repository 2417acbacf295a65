package core

import "github.com/volatiletech/null/v8"

// OptString is a nullable string field of a partial update.
// Set is false when the field was absent from the payload; a null value clears the column.
type OptString struct {
	Set   bool
	Value null.String
}

// SetString returns an OptString setting the field to s (or clearing it if s is blank).
func SetString(s string) OptString {
	return OptString{Set: true, Value: NullString(s)}
}

// ClearString returns an OptString clearing the field.
func ClearString() OptString {
	return OptString{Set: true}
}

func (o *OptString) UnmarshalJSON(data []byte) error {
	o.Set = true
	if err := o.Value.UnmarshalJSON(data); err != nil {
		return err
	}
	o.Value = NullString(o.Value.String)
	return nil
}

func (o OptString) MarshalJSON() ([]byte, error) {
	return o.Value.MarshalJSON()
}

// NullString trims s and returns a null.String that is null when s is blank.
func NullString(s string) null.String {
	s = CleanString(s)
	return null.NewString(s, s != "")
}
