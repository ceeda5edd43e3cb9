package ui

import "sync/atomic"

type Stats struct {
	StoriesFound atomic.Int64
	StoriesSaved atomic.Int64
	Chapters     atomic.Int64
	PagesFetched atomic.Int64
	BytesFetched atomic.Int64
}
