package tile

import (
	"errors"
	"fmt"
	"sync/atomic"
)

// MaxZoom is the coarsest zoom level: a single tile covers the world.
const MaxZoom = 16

// ShardCount is the number of hostnames balanced providers spread requests over.
const ShardCount = 4

var (
	ErrInvalidZoom       = errors.New("invalid zoom level")
	ErrInvalidCoordinate = errors.New("invalid tile coordinate")
	ErrUnknownProvider   = errors.New("unknown provider")
)

// RequestKey is the provider-specific address of a tile.
type RequestKey struct {
	URL string
}

// digits are indexed by x%2 + 2*(y%2).
var (
	quadkeyADigits = [4]byte{'q', 'r', 't', 's'}
	quadkeyBDigits = [4]byte{'0', '1', '2', '3'}
)

// QuadkeyA returns the Google style quadkey: a leading 't' followed by 17-z
// digits from {q, r, t, s}, most significant first.
func QuadkeyA(x, y, z int32) (string, error) {
	body, err := quadkey(x, y, z, quadkeyADigits)
	if err != nil {
		return "", err
	}
	return "t" + body, nil
}

// QuadkeyB returns the Virtual Earth style quadkey: 17-z digits from {0, 1, 2, 3}.
func QuadkeyB(x, y, z int32) (string, error) {
	return quadkey(x, y, z, quadkeyBDigits)
}

func quadkey(x, y, z int32, digits [4]byte) (string, error) {
	if z > MaxZoom {
		return "", fmt.Errorf("%w: quadkey needs z <= %d, got %d", ErrInvalidZoom, MaxZoom, z)
	}
	if x < 0 || y < 0 {
		return "", fmt.Errorf("%w: (%d, %d)", ErrInvalidCoordinate, x, y)
	}

	b := make([]byte, 17-z)
	for i := len(b) - 1; i >= 0; i-- {
		b[i] = digits[x%2+2*(y%2)]
		x /= 2
		y /= 2
	}
	return string(b), nil
}

// YahooXYZ converts canonical coordinates to the Yahoo tile space, whose
// y axis grows northwards and whose zoom is offset by one.
func YahooXYZ(x, y, z int32) (int32, int32, int32) {
	return x, int32(int64(1)<<(16-z)) - y - 1, z + 1
}

// TMS converts canonical coordinates to a bottom-up zoom/x/y scheme where
// zoom 0 is a single tile.
func TMS(x, y, z int32) (int32, int32, int32) {
	zoom := 17 - z
	return zoom, x, int32(int64(1)<<zoom) - y - 1
}

// Encode maps a key to the request address of its provider. shard selects the
// hostname for balanced providers and is ignored otherwise.
func Encode(k Key, shard int) (RequestKey, error) {
	if !k.Provider.known() {
		return RequestKey{}, fmt.Errorf("%w: %d", ErrUnknownProvider, k.Provider)
	}
	if k.Z > MaxZoom {
		return RequestKey{}, fmt.Errorf("%w: z=%d exceeds %d", ErrInvalidZoom, k.Z, MaxZoom)
	}
	url, err := capabilities[k.Provider].url(k, shard)
	if err != nil {
		return RequestKey{}, fmt.Errorf("encode %s: %w", k, err)
	}
	return RequestKey{URL: url}, nil
}

// Balancer is the round-robin shard counter shared by every request.
type Balancer struct {
	n      atomic.Uint32
	shards uint32
}

func NewBalancer(shards int) *Balancer {
	if shards < 1 {
		shards = 1
	}
	return &Balancer{shards: uint32(shards)}
}

// Next increments the counter and returns it modulo the shard count.
func (b *Balancer) Next() int {
	return int(b.n.Add(1) % b.shards)
}
