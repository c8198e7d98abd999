package redis

import (
	"context"
	"strconv"

	"github.com/kailas-cloud/pricedex/internal/db"
)

// CreateIndex issues FT.CREATE for a hash-backed schema.
func (s *Store) CreateIndex(ctx context.Context, schema *db.Schema) error {
	if err := schema.Validate(); err != nil {
		return err
	}
	cmd := s.b().Arbitrary("FT.CREATE").Args(createArgs(schema)...).Build()
	err := s.do(ctx, cmd).Error()
	switch {
	case err == nil:
		return nil
	case isRedisErr(err, "index already exists"):
		return db.ErrIndexExists
	default:
		return wrapErr(db.OpCreateIndex, err)
	}
}

// DropIndex removes the index definition. Indexed hashes are left in place.
func (s *Store) DropIndex(ctx context.Context, name string) error {
	err := s.do(ctx, s.b().Arbitrary("FT.DROPINDEX").Args(name).Build()).Error()
	switch {
	case err == nil:
		return nil
	case isRedisErr(err, "unknown index name"):
		return db.ErrIndexNotFound
	default:
		return wrapErr(db.OpDropIndex, err)
	}
}

// IndexExists reports whether FT.INFO knows the index.
func (s *Store) IndexExists(ctx context.Context, name string) (bool, error) {
	err := s.do(ctx, s.b().Arbitrary("FT.INFO").Args(name).Build()).Error()
	switch {
	case err == nil:
		return true, nil
	case isRedisErr(err, "unknown index name"):
		return false, nil
	default:
		return false, wrapErr(db.OpIndexInfo, err)
	}
}

// createArgs renders the FT.CREATE arguments after the command name.
func createArgs(schema *db.Schema) []string {
	args := []string{schema.Name, "ON", "HASH", "PREFIX", "1", schema.Prefix}
	if schema.Language != "" {
		args = append(args, "LANGUAGE", schema.Language)
	}
	args = append(args, "SCHEMA")
	for _, f := range schema.Fields {
		args = append(args, fieldArgs(f)...)
	}
	return args
}

func fieldArgs(f db.Field) []string {
	args := []string{f.Name, f.Kind.String()}
	if f.Weight > 0 {
		args = append(args, "WEIGHT", strconv.FormatFloat(f.Weight, 'f', -1, 64))
	}
	if f.Separator != "" {
		args = append(args, "SEPARATOR", f.Separator)
	}
	if f.Sortable {
		args = append(args, "SORTABLE")
	}
	return args
}
