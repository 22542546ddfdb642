package distributor

import "fm3drun/internal/model"

// PartitionSources splits total sources into n contiguous chunks whose sizes
// differ by at most one, larger chunks first: 10 sources over 4 cores gives
// {3,3,2,2}. n is clamped to [1, total].
func PartitionSources(total, n int) []model.Chunk {
	if n > total {
		n = total
	}
	if n < 1 {
		n = 1
	}

	base := total / n
	extra := total % n

	chunks := make([]model.Chunk, 0, n)
	first := 1
	for i := 0; i < n; i++ {
		size := base
		if i < extra {
			size++
		}
		chunks = append(chunks, model.Chunk{
			Index:       i,
			FirstSource: first,
			LastSource:  first + size - 1,
		})
		first += size
	}
	return chunks
}
