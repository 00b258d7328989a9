package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/reader"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/paulwritescode/minidb/internal/types"
)

// ParquetRow is the archive record shape: one row per table row, with the
// row payload carried as JSON so the schema stays fixed across tables.
type ParquetRow struct {
	TableName string `parquet:"name=table_name, type=BYTE_ARRAY, convertedtype=UTF8"`
	DataJSON  string `parquet:"name=data_json, type=BYTE_ARRAY, convertedtype=UTF8"`
}

// Archive exports tables to per-table Parquet files for analytic consumers.
// It is an export-only side path; queries against it never touch the live
// catalog.
type Archive struct {
	dir string
}

// NewArchive creates the archive directory if needed.
func NewArchive(dir string) (*Archive, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, types.NewPersistenceError("create archive directory: %v", err)
	}
	return &Archive{dir: dir}, nil
}

func (a *Archive) tablePath(table string) string {
	return filepath.Join(a.dir, fmt.Sprintf("%s.parquet", table))
}

// ExportAll writes every table of the database to its archive file.
func (a *Archive) ExportAll(db *Database) error {
	for _, name := range db.ListTables() {
		t, err := db.Table(name)
		if err != nil {
			return err
		}
		if err := a.exportTable(t); err != nil {
			return err
		}
	}
	types.GlobalLogger.Info("archived %d tables to %s", len(db.ListTables()), a.dir)
	return nil
}

func (a *Archive) exportTable(t *Table) error {
	fw, err := local.NewLocalFileWriter(a.tablePath(t.Name))
	if err != nil {
		return types.NewPersistenceError("create archive file for %s: %v", t.Name, err)
	}
	defer fw.Close()

	pw, err := writer.NewParquetWriter(fw, new(ParquetRow), 4)
	if err != nil {
		return types.NewPersistenceError("create archive writer for %s: %v", t.Name, err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	var writeErr error
	t.Scan(func(_ int, row types.Row) bool {
		data, err := json.Marshal(row)
		if err != nil {
			writeErr = err
			return false
		}
		if err := pw.Write(&ParquetRow{TableName: t.Name, DataJSON: string(data)}); err != nil {
			writeErr = err
			return false
		}
		return true
	})
	if writeErr != nil {
		return types.NewPersistenceError("write archive for %s: %v", t.Name, writeErr)
	}
	if err := pw.WriteStop(); err != nil {
		return types.NewPersistenceError("finish archive for %s: %v", t.Name, err)
	}
	return nil
}

// ReadTable reads a table's archived rows back, coercing values against the
// given schema so integers survive the JSON round trip.
func (a *Archive) ReadTable(table string, columns []types.Column) ([]types.Row, error) {
	fr, err := local.NewLocalFileReader(a.tablePath(table))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, types.NewPersistenceError("no archive for table %s", table)
		}
		return nil, types.NewPersistenceError("open archive for %s: %v", table, err)
	}
	defer fr.Close()

	pr, err := reader.NewParquetReader(fr, new(ParquetRow), 4)
	if err != nil {
		return nil, types.NewPersistenceError("read archive for %s: %v", table, err)
	}
	defer pr.ReadStop()

	records := make([]ParquetRow, int(pr.GetNumRows()))
	if err := pr.Read(&records); err != nil {
		return nil, types.NewPersistenceError("read archive rows for %s: %v", table, err)
	}

	colTypes := make(map[string]types.ColumnType, len(columns))
	for _, col := range columns {
		colTypes[col.Name] = col.Type
	}

	var rows []types.Row
	for _, rec := range records {
		if rec.TableName != table {
			continue
		}
		decoder := json.NewDecoder(bytes.NewReader([]byte(rec.DataJSON)))
		decoder.UseNumber()
		var raw map[string]interface{}
		if err := decoder.Decode(&raw); err != nil {
			return nil, types.NewPersistenceError("decode archived row for %s: %v", table, err)
		}
		row := make(types.Row, len(raw))
		for k, v := range raw {
			colType, ok := colTypes[k]
			if !ok {
				return nil, types.NewPersistenceError("archived row for %s has unknown column %s", table, k)
			}
			val, err := decodeSnapshotValue(v, colType)
			if err != nil {
				return nil, err
			}
			row[k] = val
		}
		rows = append(rows, row)
	}
	return rows, nil
}
