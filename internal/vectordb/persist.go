package vectordb

import (
	"encoding/binary"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
)

// Persistence layout, per collection name C under dataDir:
//
//	C_vectors.bin    raw little-endian float32 matrix, header: dim uint32, n uint32
//	C_documents.gob  gob-encoded []string
//	C_metadata.json  JSON array of n metadata objects or nulls
//
// All three are rewritten on every mutation. Each artifact is written to a
// temp file first and the renames happen only after all writes succeed, so a
// crash mid-save leaves the previous consistent trio in place.

func (c *Collection) vectorsPath() string {
	return filepath.Join(c.dataDir, c.name+"_vectors.bin")
}

func (c *Collection) documentsPath() string {
	return filepath.Join(c.dataDir, c.name+"_documents.gob")
}

func (c *Collection) metadataPath() string {
	return filepath.Join(c.dataDir, c.name+"_metadata.json")
}

// save persists the given state. Caller holds the write lock.
func (c *Collection) save(docs []string, vectors [][]float32, meta []map[string]any) error {
	if err := os.MkdirAll(c.dataDir, 0755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	tmpVectors, err := writeTemp(c.dataDir, func(f *os.File) error {
		return writeVectors(f, c.embedder.Dimensions(), vectors)
	})
	if err != nil {
		return fmt.Errorf("write vectors: %w", err)
	}
	tmpDocs, err := writeTemp(c.dataDir, func(f *os.File) error {
		return gob.NewEncoder(f).Encode(docs)
	})
	if err != nil {
		os.Remove(tmpVectors)
		return fmt.Errorf("write documents: %w", err)
	}
	tmpMeta, err := writeTemp(c.dataDir, func(f *os.File) error {
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		return enc.Encode(meta)
	})
	if err != nil {
		os.Remove(tmpVectors)
		os.Remove(tmpDocs)
		return fmt.Errorf("write metadata: %w", err)
	}

	for _, r := range []struct{ tmp, final string }{
		{tmpVectors, c.vectorsPath()},
		{tmpDocs, c.documentsPath()},
		{tmpMeta, c.metadataPath()},
	} {
		if err := os.Rename(r.tmp, r.final); err != nil {
			return fmt.Errorf("commit %s: %w", filepath.Base(r.final), err)
		}
	}
	return nil
}

// load reads the persisted trio. Missing vectors or documents artifacts mean
// a fresh collection; a missing metadata artifact is tolerated and filled
// with nils. Mismatched artifact lengths are an error.
func (c *Collection) load() ([]string, [][]float32, []map[string]any, error) {
	vf, err := os.Open(c.vectorsPath())
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, [][]float32{}, []map[string]any{}, nil
		}
		return nil, nil, nil, fmt.Errorf("open vectors: %w", err)
	}
	defer vf.Close()
	vectors, err := readVectors(vf, c.embedder.Dimensions())
	if err != nil {
		return nil, nil, nil, err
	}

	df, err := os.Open(c.documentsPath())
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, [][]float32{}, []map[string]any{}, nil
		}
		return nil, nil, nil, fmt.Errorf("open documents: %w", err)
	}
	defer df.Close()
	var docs []string
	if err := gob.NewDecoder(df).Decode(&docs); err != nil {
		return nil, nil, nil, fmt.Errorf("decode documents: %w", err)
	}

	if len(docs) != len(vectors) {
		return nil, nil, nil, fmt.Errorf("artifact length mismatch: %d documents, %d vectors", len(docs), len(vectors))
	}

	meta := make([]map[string]any, len(docs))
	mdata, err := os.ReadFile(c.metadataPath())
	if err == nil {
		if err := json.Unmarshal(mdata, &meta); err != nil {
			return nil, nil, nil, fmt.Errorf("decode metadata: %w", err)
		}
		if len(meta) != len(docs) {
			return nil, nil, nil, fmt.Errorf("artifact length mismatch: %d documents, %d metadata entries", len(docs), len(meta))
		}
	} else if !os.IsNotExist(err) {
		return nil, nil, nil, fmt.Errorf("read metadata: %w", err)
	}

	return docs, vectors, meta, nil
}

func writeTemp(dir string, write func(*os.File) error) (string, error) {
	f, err := os.CreateTemp(dir, ".tango-save-*")
	if err != nil {
		return "", err
	}
	if err := write(f); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}

func writeVectors(f *os.File, dim int, vectors [][]float32) error {
	if err := binary.Write(f, binary.LittleEndian, uint32(dim)); err != nil {
		return err
	}
	if err := binary.Write(f, binary.LittleEndian, uint32(len(vectors))); err != nil {
		return err
	}
	buf := make([]byte, dim*4)
	for _, row := range vectors {
		for i, v := range row {
			binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
		}
		if _, err := f.Write(buf); err != nil {
			return err
		}
	}
	return nil
}

func readVectors(f *os.File, expectDim int) ([][]float32, error) {
	var dim, n uint32
	if err := binary.Read(f, binary.LittleEndian, &dim); err != nil {
		return nil, fmt.Errorf("read vector header: %w", err)
	}
	if int(dim) != expectDim {
		return nil, fmt.Errorf("dimension mismatch: file has %d, embedder expects %d", dim, expectDim)
	}
	if err := binary.Read(f, binary.LittleEndian, &n); err != nil {
		return nil, fmt.Errorf("read vector count: %w", err)
	}
	vectors := make([][]float32, 0, n)
	buf := make([]byte, dim*4)
	for i := uint32(0); i < n; i++ {
		if _, err := io.ReadFull(f, buf); err != nil {
			return nil, fmt.Errorf("read vector row %d: %w", i, err)
		}
		row := make([]float32, dim)
		for j := range row {
			row[j] = math.Float32frombits(binary.LittleEndian.Uint32(buf[j*4:]))
		}
		vectors = append(vectors, row)
	}
	return vectors, nil
}
