package settings

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/jaennil/guide_helper/backend/maps/internal/repository/disk"
	"github.com/jaennil/guide_helper/backend/maps/internal/tile"
)

const (
	NumFavorites = 9
	NameLength   = 50

	// x, y float32; z, provider int32; valid byte; name; one pad byte.
	favoriteSize = 4 + 4 + 4 + 4 + 1 + NameLength + 1
)

var ErrInvalidSlot = errors.New("invalid favorite slot")

// Favorite is a saved map position.
type Favorite struct {
	X        float64       `json:"x"`
	Y        float64       `json:"y"`
	Z        int           `json:"z"`
	Provider tile.Provider `json:"provider"`
	Valid    bool          `json:"valid"`
	Name     string        `json:"name"`
}

type Favorites [NumFavorites]Favorite

func (f *Favorites) Get(slot int) (Favorite, error) {
	if slot < 0 || slot >= NumFavorites {
		return Favorite{}, fmt.Errorf("%w: %d", ErrInvalidSlot, slot)
	}
	return f[slot], nil
}

// Set stores fav in slot and marks it valid. Names longer than the on-disk
// field are cut at a rune boundary.
func (f *Favorites) Set(slot int, fav Favorite) error {
	if slot < 0 || slot >= NumFavorites {
		return fmt.Errorf("%w: %d", ErrInvalidSlot, slot)
	}
	fav.Valid = true
	fav.Name = truncateName(fav.Name)
	f[slot] = fav
	return nil
}

func (f *Favorites) Clear(slot int) error {
	if slot < 0 || slot >= NumFavorites {
		return fmt.Errorf("%w: %d", ErrInvalidSlot, slot)
	}
	f[slot] = Favorite{}
	return nil
}

func truncateName(name string) string {
	// one byte is kept for the terminating NUL
	limit := NameLength - 1
	if len(name) <= limit {
		return name
	}
	for limit > 0 && !utf8RuneStart(name[limit]) {
		limit--
	}
	return name[:limit]
}

func utf8RuneStart(b byte) bool {
	return b&0xC0 != 0x80
}

func (f *Favorites) MarshalBinary() ([]byte, error) {
	buf := make([]byte, favoriteSize*NumFavorites)
	for i, fav := range f {
		rec := buf[i*favoriteSize:]
		binary.LittleEndian.PutUint32(rec, math.Float32bits(float32(fav.X)))
		binary.LittleEndian.PutUint32(rec[4:], math.Float32bits(float32(fav.Y)))
		binary.LittleEndian.PutUint32(rec[8:], uint32(int32(fav.Z)))
		binary.LittleEndian.PutUint32(rec[12:], uint32(fav.Provider))
		if fav.Valid {
			rec[16] = 1
		}
		copy(rec[17:17+NameLength-1], truncateName(fav.Name))
	}
	return buf, nil
}

// UnmarshalBinary decodes as many whole records as data holds; the rest of
// the slots are cleared.
func (f *Favorites) UnmarshalBinary(data []byte) error {
	*f = Favorites{}
	n := min(len(data)/favoriteSize, NumFavorites)
	for i := 0; i < n; i++ {
		rec := data[i*favoriteSize:]
		name := rec[17 : 17+NameLength]
		if end := bytes.IndexByte(name, 0); end >= 0 {
			name = name[:end]
		}
		f[i] = Favorite{
			X:        float64(math.Float32frombits(binary.LittleEndian.Uint32(rec))),
			Y:        float64(math.Float32frombits(binary.LittleEndian.Uint32(rec[4:]))),
			Z:        int(int32(binary.LittleEndian.Uint32(rec[8:]))),
			Provider: tile.Provider(int32(binary.LittleEndian.Uint32(rec[12:]))),
			Valid:    rec[16] != 0,
			Name:     string(name),
		}
	}
	return nil
}

// LoadFavorites reads favorite.dat. A missing file yields no favorites.
func LoadFavorites(path string) (Favorites, error) {
	var favs Favorites

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return favs, nil
		}
		return favs, fmt.Errorf("failed to read favorites: %w", err)
	}

	err = favs.UnmarshalBinary(data)
	return favs, err
}

func SaveFavorites(path string, favs *Favorites) error {
	data, err := favs.MarshalBinary()
	if err != nil {
		return err
	}
	return disk.WriteFileAtomic(path, data)
}
