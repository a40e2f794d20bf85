package cache

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/cespare/xxhash/v2"

	"github.com/soltixdb/trendscope/internal/analytics"
)

// Key derives the cache key for running a pipeline configured as fingerprint
// over series. Two series hash equal only if every timestamp and value match
// bit for bit, in order.
func Key(series analytics.Series, fingerprint string) string {
	d := xxhash.New()

	// Seconds and nanoseconds are hashed separately; UnixNano overflows
	// outside 1678-2262.
	var buf [24]byte
	for _, s := range series {
		binary.LittleEndian.PutUint64(buf[:8], uint64(s.Time.Unix()))
		binary.LittleEndian.PutUint64(buf[8:16], uint64(s.Time.Nanosecond()))
		binary.LittleEndian.PutUint64(buf[16:], math.Float64bits(s.Value))
		_, _ = d.Write(buf[:])
	}

	binary.LittleEndian.PutUint64(buf[:8], uint64(len(series)))
	_, _ = d.Write(buf[:8])
	_, _ = d.WriteString(fingerprint)

	return fmt.Sprintf("%016x", d.Sum64())
}
