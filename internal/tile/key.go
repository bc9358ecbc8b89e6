package tile

import "fmt"

// Key identifies one tile in the canonical (Google) coordinate space.
type Key struct {
	X        int32
	Y        int32
	Z        int32
	Provider Provider
}

func NewKey(x, y, z int32, p Provider) Key {
	return Key{X: x, Y: y, Z: z, Provider: p}
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%d/%d/%d", k.Provider, k.Z, k.X, k.Y)
}

// WorldSize returns the number of tiles per axis at zoom z.
func WorldSize(z int32) int64 {
	return int64(1) << (17 - z)
}

// Validate checks the key against its provider's zoom range and the bounds
// of the world at that zoom.
func (k Key) Validate() error {
	if !k.Provider.known() {
		return fmt.Errorf("%w: %d", ErrUnknownProvider, k.Provider)
	}
	if k.Z < k.Provider.MinZoom() || k.Z > k.Provider.MaxZoom() {
		return fmt.Errorf("%w: %s serves z in [%d, %d], got %d",
			ErrInvalidZoom, k.Provider, k.Provider.MinZoom(), k.Provider.MaxZoom(), k.Z)
	}
	size := WorldSize(k.Z)
	if k.X < 0 || k.Y < 0 || int64(k.X) >= size || int64(k.Y) >= size {
		return fmt.Errorf("%w: (%d, %d) outside [0, %d) at z=%d", ErrInvalidCoordinate, k.X, k.Y, size, k.Z)
	}
	return nil
}

// Neighborhood returns the 2x2 block displayed around (x, y): the tiles at
// x-1..x and y-1..y, row by row.
func Neighborhood(x, y, z int32, p Provider) [4]Key {
	var keys [4]Key
	i := 0
	for j := int32(-1); j < 1; j++ {
		for k := int32(-1); k < 1; k++ {
			keys[i] = NewKey(x+k, y+j, z, p)
			i++
		}
	}
	return keys
}
