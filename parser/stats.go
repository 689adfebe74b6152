package parser

import (
	"encoding/json"
	"sync"
)

var (
	STATS = Stats{}
)

type Stats struct {
	mu sync.Mutex

	DecompressionContext int
	ChunkDecode          int
	ChunkStored          int
	ChunkCacheHit        int
	XpressDecompress     int
	LzxDecompress        int
	HuffmanTable         int
}

func (self *Stats) DebugString() string {
	self.mu.Lock()
	defer self.mu.Unlock()

	serialized, _ := json.MarshalIndent(self, " ", " ")
	return string(serialized)
}

func (self *Stats) Inc_DecompressionContext() {
	self.mu.Lock()
	defer self.mu.Unlock()

	self.DecompressionContext++
}

func (self *Stats) Inc_ChunkDecode() {
	self.mu.Lock()
	defer self.mu.Unlock()

	self.ChunkDecode++
}

func (self *Stats) Inc_ChunkStored() {
	self.mu.Lock()
	defer self.mu.Unlock()

	self.ChunkStored++
}

func (self *Stats) Inc_ChunkCacheHit() {
	self.mu.Lock()
	defer self.mu.Unlock()

	self.ChunkCacheHit++
}

func (self *Stats) Inc_XpressDecompress() {
	self.mu.Lock()
	defer self.mu.Unlock()

	self.XpressDecompress++
}

func (self *Stats) Inc_LzxDecompress() {
	self.mu.Lock()
	defer self.mu.Unlock()

	self.LzxDecompress++
}

func (self *Stats) Inc_HuffmanTable() {
	self.mu.Lock()
	defer self.mu.Unlock()

	self.HuffmanTable++
}
