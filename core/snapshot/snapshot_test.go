package snapshot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func rec(identity string, ts time.Time) Record {
	return Record{Identity: identity, Timestamp: ts, Payload: "{}"}
}

func TestBuilder_UniqueIdentities(t *testing.T) {
	now := time.Now().UTC()

	b := NewBuilder("source.current", 2)
	assert.NoError(t, b.Add(rec("5", now)))

	err := b.Add(rec("5", now.Add(time.Minute)))
	assert.Error(t, err)

	var dup *DuplicateIdentityError
	assert.ErrorAs(t, err, &dup)
	assert.Equal(t, "5", dup.Identity)
	assert.Equal(t, "source.current", dup.Location)
}

func TestBuilder_SchemaValidation(t *testing.T) {
	b := NewBuilder("dest", 0)

	var schemaErr *SchemaError

	err := b.Add(Record{Identity: "", Timestamp: time.Now().UTC()})
	assert.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, "identity", schemaErr.Field)

	err = b.Add(Record{Identity: "1"})
	assert.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, "timestamp", schemaErr.Field)
}

func TestNew_Accessors(t *testing.T) {
	now := time.Now().UTC()
	s, err := New("dest.current", []Record{rec("1", now), rec("2", now)})
	assert.NoError(t, err)

	assert.Equal(t, "dest.current", s.Location())
	assert.Equal(t, 2, s.Len())

	got, ok := s.Get("1")
	assert.True(t, ok)
	assert.Equal(t, "1", got.Identity)

	_, ok = s.Get("3")
	assert.False(t, ok)
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"UTC", "2024-03-01T10:00:00Z", false},
		{"Offset", "2024-03-01T10:00:00+02:00", false},
		{"Fractional", "2024-03-01T10:00:00.123456789Z", false},
		{"Naive", "2024-03-01T10:00:00", true},
		{"DateOnly", "2024-03-01", true},
		{"Empty", "", true},
		{"Garbage", "not-a-time", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, err := ParseTimestamp(tt.raw)
			if tt.wantErr {
				var schemaErr *SchemaError
				assert.ErrorAs(t, err, &schemaErr)
				assert.Equal(t, "timestamp", schemaErr.Field)
				return
			}
			assert.NoError(t, err)
			assert.False(t, ts.IsZero())
		})
	}
}

func TestFormatTimestamp_RoundTrip(t *testing.T) {
	ts := time.Date(2024, 3, 1, 10, 30, 0, 0, time.FixedZone("CET", 3600))
	parsed, err := ParseTimestamp(FormatTimestamp(ts))
	assert.NoError(t, err)
	assert.True(t, parsed.Equal(ts))
}
