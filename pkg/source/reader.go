package source

import (
	"fmt"
	"os"

	"github.com/edsrzf/mmap-go"
)

// readMapped returns the content of path, read through a read-only memory
// map when possible. The mapping is released before returning; the result
// is a copy. mapped is false when mmap failed and os.ReadFile was used.
func readMapped(path string) (data []byte, mapped bool, err error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, false, fmt.Errorf("failed to open file %q: %w", path, err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, false, fmt.Errorf("failed to stat file %q: %w", path, err)
	}

	// Zero bytes cannot be mapped.
	if stat.Size() == 0 {
		return []byte{}, true, nil
	}

	m, err := mmap.Map(file, mmap.RDONLY, 0)
	if err != nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, false, fmt.Errorf("failed to read file %q: %w", path, err)
		}
		return data, false, nil
	}

	data = make([]byte, len(m))
	copy(data, m)

	if err := m.Unmap(); err != nil {
		return nil, true, fmt.Errorf("failed to unmap file %q: %w", path, err)
	}
	return data, true, nil
}
