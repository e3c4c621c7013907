package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"syncbench/core/retry"
	"syncbench/core/snapshot"

	"github.com/minio/minio-go/v7"
	"github.com/parquet-go/parquet-go"

	"syncbench/core/storage"
)

// ErrObjectNotFound reports that a snapshot object does not exist yet.
// Callers decide whether that means "empty" (a destination before its
// first run) or a hard failure (a source that should have been seeded).
var ErrObjectNotFound = errors.New("object not found")

// parquetRow is the on-disk row schema. Timestamps travel as RFC 3339
// strings so that timezone information survives the round trip; values
// without an offset are rejected on read.
type parquetRow struct {
	Identity  string `parquet:"identity"`
	UpdatedAt string `parquet:"updated_at"`
	Payload   string `parquet:"payload"`
}

// ParquetStore reads and writes record sets as single parquet objects.
// It is shared by ParquetSource and the delta destination so both sides
// of a run agree on the codec.
type ParquetStore struct {
	client storage.Client
	bucket string
}

// NewParquetStore creates a store over the given bucket.
func NewParquetStore(client storage.Client, bucket string) *ParquetStore {
	return &ParquetStore{client: client, bucket: bucket}
}

// Bucket returns the backing bucket name.
func (s *ParquetStore) Bucket() string { return s.bucket }

// ReadRecords fetches and decodes one parquet object. A missing object
// yields ErrObjectNotFound; transport failures are retried.
func (s *ParquetStore) ReadRecords(ctx context.Context, object string) ([]snapshot.Record, error) {
	var data []byte
	err := retry.Do(ctx, retry.DefaultMaxRetries, func() error {
		obj, err := s.client.GetObject(ctx, s.bucket, object, minio.GetObjectOptions{})
		if err != nil {
			return classifyStorageErr("get "+object, err)
		}
		defer obj.Close()

		// Minio fetches lazily; a missing object only surfaces here.
		data, err = io.ReadAll(obj)
		if err != nil {
			return classifyStorageErr("read "+object, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	rows, err := parquet.Read[parquetRow](bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("decode parquet object %q: %w", object, err)
	}

	recs := make([]snapshot.Record, 0, len(rows))
	for _, row := range rows {
		ts, err := snapshot.ParseTimestamp(row.UpdatedAt)
		if err != nil {
			return nil, err
		}
		recs = append(recs, snapshot.Record{
			Identity:  row.Identity,
			Timestamp: ts,
			Payload:   row.Payload,
		})
	}
	return recs, nil
}

// WriteRecords encodes the records and uploads them as one object,
// replacing any previous version.
func (s *ParquetStore) WriteRecords(ctx context.Context, object string, recs []snapshot.Record) error {
	rows := make([]parquetRow, 0, len(recs))
	for _, rec := range recs {
		rows = append(rows, parquetRow{
			Identity:  rec.Identity,
			UpdatedAt: snapshot.FormatTimestamp(rec.Timestamp),
			Payload:   rec.Payload,
		})
	}

	var buf bytes.Buffer
	if err := parquet.Write(&buf, rows); err != nil {
		return fmt.Errorf("encode parquet object %q: %w", object, err)
	}

	return retry.Do(ctx, retry.DefaultMaxRetries, func() error {
		_, err := s.client.PutObject(ctx, s.bucket, object,
			bytes.NewReader(buf.Bytes()), int64(buf.Len()), minio.PutObjectOptions{
				ContentType: "application/vnd.apache.parquet",
			})
		if err != nil {
			return classifyStorageErr("put "+object, err)
		}
		return nil
	})
}

// classifyStorageErr separates the permanently-missing case from
// transient transport failures so the retry loop gives up immediately
// on the former.
func classifyStorageErr(op string, err error) error {
	resp := minio.ToErrorResponse(err)
	if resp.Code == "NoSuchKey" || resp.Code == "NoSuchBucket" {
		return ErrObjectNotFound
	}
	return retry.Transient(op, err)
}

// ParquetSource is a system of record backed by parquet objects.
type ParquetSource struct {
	store         *ParquetStore
	currentObject string
	updatesObject string
}

// NewParquetSource creates a source reading its current state and update
// slice from the two given objects.
func NewParquetSource(store *ParquetStore, currentObject, updatesObject string) *ParquetSource {
	return &ParquetSource{
		store:         store,
		currentObject: currentObject,
		updatesObject: updatesObject,
	}
}

// Type implements Source.
func (s *ParquetSource) Type() string { return "parquet" }

// Current implements Source.
func (s *ParquetSource) Current(ctx context.Context) (*snapshot.Snapshot, error) {
	return s.read(ctx, s.currentObject)
}

// Updates implements Source.
func (s *ParquetSource) Updates(ctx context.Context) (*snapshot.Snapshot, error) {
	return s.read(ctx, s.updatesObject)
}

func (s *ParquetSource) read(ctx context.Context, object string) (*snapshot.Snapshot, error) {
	recs, err := s.store.ReadRecords(ctx, object)
	if err != nil {
		return nil, err
	}
	return snapshot.New(s.store.Bucket()+"/"+object, recs)
}

// WriteCurrent implements Materializer.
func (s *ParquetSource) WriteCurrent(ctx context.Context, recs []snapshot.Record) error {
	return s.store.WriteRecords(ctx, s.currentObject, recs)
}

// WriteUpdates implements Materializer.
func (s *ParquetSource) WriteUpdates(ctx context.Context, recs []snapshot.Record) error {
	return s.store.WriteRecords(ctx, s.updatesObject, recs)
}
