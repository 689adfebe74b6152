package parser

const (
	DefaultChunkCacheSize = 4
)

type Options struct {
	// Number of decoded chunks to keep in the LRU cache. A size of
	// 1 caches only the most recently decoded chunk. Zero disables
	// caching entirely.
	ChunkCacheSize int

	// Page size for PagedReader when the raw stream is wrapped
	// with one.
	PageSize int64

	// Number of pages held by the PagedReader cache.
	PageCacheSize int
}

func GetDefaultOptions() Options {
	return Options{
		ChunkCacheSize: DefaultChunkCacheSize,
		PageSize:       4096,
		PageCacheSize:  100,
	}
}
