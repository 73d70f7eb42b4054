package benchmark

import (
	"math/rand"
	"strconv"
	"strings"

	"putgetbench/stats"
)

// Generator produces payloads and keys for one worker. It is not safe for
// concurrent use; every worker owns one.
type Generator struct {
	rng     *rand.Rand
	minSize int
	maxSize int
}

// NewGenerator creates a generator drawing sizes in [minSize, maxSize).
func NewGenerator(rng *rand.Rand, minSize, maxSize int) *Generator {
	return &Generator{rng: rng, minSize: minSize, maxSize: maxSize}
}

// Size draws a payload size.
func (g *Generator) Size() int {
	return g.minSize + g.rng.Intn(g.maxSize-g.minSize)
}

// Payload draws a size and fills a pooled buffer of that size with random
// bytes. Hand the buffer back with PutBuffer once the put is done.
func (g *Generator) Payload() (int, []byte) {
	size := g.Size()
	buf := GetBuffer(size)
	g.rng.Read(buf)
	return size, buf
}

// Pick returns a uniform index in [0, n).
func (g *Generator) Pick(n int) int {
	return g.rng.Intn(n)
}

// Key builds "prefix/<kind>_<discriminator>".
func Key(prefix string, kind stats.Kind, discriminator string) string {
	name := kind.String() + "_" + discriminator
	prefix = strings.TrimSuffix(prefix, "/")
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}

// SizeKey is the key a put of size bytes is stored under.
func SizeKey(prefix string, size int) string {
	return Key(prefix, stats.Put, strconv.Itoa(size))
}
