package tile

import (
	"fmt"
	"strconv"
	"strings"
)

// Provider identifies a remote tile source. The numeric values are persisted
// in disk.dat and favorite.dat, so new providers must only be appended.
type Provider int32

// NoProvider marks an empty disk cache slot.
const NoProvider Provider = -1

const (
	GoogleMap Provider = iota
	GoogleSatellite
	GoogleHybrid
	GoogleTerrain
	VirtualEarthRoad
	VirtualEarthAerial
	VirtualEarthHybrid
	VirtualEarthHill
	YahooMap
	YahooSatellite
	YahooHybrid
	MoonApollo
	MoonElevation
	MarsElevation
	MarsVisible
	MarsInfrared
	SkyVisible
	SkyInfrared
	SkyMicrowave
	SkyHistorical

	numProviders
)

// urlFunc builds the request URL for a key. shard is only meaningful for
// balanced providers.
type urlFunc func(k Key, shard int) (string, error)

type capability struct {
	name     string
	minZoom  int32
	maxZoom  int32
	balanced bool
	url      urlFunc
}

var capabilities = [numProviders]capability{
	GoogleMap: {
		name: "google-map", minZoom: 1, maxZoom: 16, balanced: true,
		url: googleXY("w2.75"),
	},
	GoogleSatellite: {
		name: "google-satellite", minZoom: -4, maxZoom: 16, balanced: true,
		url: func(k Key, shard int) (string, error) {
			q, err := QuadkeyA(k.X, k.Y, k.Z)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("http://khm%d.google.com/kh?v=30&t=%s", shard, q), nil
		},
	},
	GoogleHybrid: {
		name: "google-hybrid", minZoom: 1, maxZoom: 16, balanced: true,
		url: googleXY("w2t.75"),
	},
	GoogleTerrain: {
		name: "google-terrain", minZoom: 1, maxZoom: 16, balanced: true,
		url: googleXY("w2p.71"),
	},
	VirtualEarthRoad: {
		name: "ve-road", minZoom: -2, maxZoom: 16,
		url: virtualEarth("r", ""),
	},
	VirtualEarthAerial: {
		name: "ve-aerial", minZoom: -2, maxZoom: 16,
		url: virtualEarth("a", ""),
	},
	VirtualEarthHybrid: {
		name: "ve-hybrid", minZoom: -2, maxZoom: 16,
		url: virtualEarth("h", ""),
	},
	VirtualEarthHill: {
		name: "ve-hill", minZoom: -2, maxZoom: 16,
		url: virtualEarth("r", "&shading=hill"),
	},
	YahooMap: {
		name: "yahoo-map", minZoom: 0, maxZoom: 16,
		url: yahoo("http://us.maps1.yimg.com/us.tile.yimg.com/tl?v=4.1"),
	},
	YahooSatellite: {
		name: "yahoo-satellite", minZoom: 0, maxZoom: 16,
		url: yahoo("http://us.maps3.yimg.com/aerial.maps.yimg.com/ximg?v=1.7&t=a"),
	},
	YahooHybrid: {
		name: "yahoo-hybrid", minZoom: 0, maxZoom: 16,
		url: yahoo("http://us.maps3.yimg.com/aerial.maps.yimg.com/ximg?v=2.5&t=p"),
	},
	MoonApollo: {
		name: "moon-apollo", minZoom: 10, maxZoom: 16,
		url: moon("apollo"),
	},
	MoonElevation: {
		name: "moon-elevation", minZoom: 10, maxZoom: 16,
		url: moon("terrain"),
	},
	MarsElevation: {
		name: "mars-elevation", minZoom: 5, maxZoom: 16,
		url: mars("elevation"),
	},
	MarsVisible: {
		name: "mars-visible", minZoom: 5, maxZoom: 16,
		url: mars("visible"),
	},
	MarsInfrared: {
		name: "mars-infrared", minZoom: 5, maxZoom: 16,
		url: mars("infrared"),
	},
	SkyVisible: {
		name: "sky-visible", minZoom: 8, maxZoom: 16,
		url: func(k Key, _ int) (string, error) {
			return fmt.Sprintf("http://mw1.google.com/mw-planetary/sky/skytiles_v1/%d_%d_%d.jpg", k.X, k.Y, 17-k.Z), nil
		},
	},
	SkyInfrared: {
		name: "sky-infrared", minZoom: 13, maxZoom: 16,
		url: skyOverlay("iras"),
	},
	SkyMicrowave: {
		name: "sky-microwave", minZoom: 13, maxZoom: 16,
		url: skyOverlay("wmap"),
	},
	SkyHistorical: {
		name: "sky-historical", minZoom: 13, maxZoom: 16,
		url: skyOverlay("cassini"),
	},
}

func googleXY(version string) urlFunc {
	return func(k Key, shard int) (string, error) {
		return fmt.Sprintf("http://mt%d.google.com/mt?n=404&v=%s&x=%d&y=%d&zoom=%d", shard, version, k.X, k.Y, k.Z), nil
	}
}

func virtualEarth(style, extra string) urlFunc {
	return func(k Key, _ int) (string, error) {
		q, err := QuadkeyB(k.X, k.Y, k.Z)
		if err != nil {
			return "", err
		}
		return "http://tiles.virtualearth.net/tiles/" + style + q + "?g=117" + extra, nil
	}
}

func yahoo(base string) urlFunc {
	return func(k Key, _ int) (string, error) {
		x, y, z := YahooXYZ(k.X, k.Y, k.Z)
		return fmt.Sprintf("%s&x=%d&y=%d&z=%d", base, x, y, z), nil
	}
}

func moon(layer string) urlFunc {
	return func(k Key, _ int) (string, error) {
		zoom, x, y := TMS(k.X, k.Y, k.Z)
		return fmt.Sprintf("http://mw1.google.com/mw-planetary/lunar/lunarmaps_v1/%s/%d/%d/%d.jpg", layer, zoom, x, y), nil
	}
}

func mars(layer string) urlFunc {
	return func(k Key, _ int) (string, error) {
		q, err := QuadkeyA(k.X, k.Y, k.Z)
		if err != nil {
			return "", err
		}
		return "http://mw1.google.com/mw-planetary/mars/" + layer + "/" + q + ".jpg", nil
	}
}

func skyOverlay(layer string) urlFunc {
	return func(k Key, _ int) (string, error) {
		return fmt.Sprintf("http://mw1.google.com/mw-planetary/sky/mapscontent_v1/overlayTiles/%s/zoom%d/%s_%d_%d.png",
			layer, 17-k.Z, layer, k.X, k.Y), nil
	}
}

func (p Provider) known() bool {
	return p >= 0 && p < numProviders
}

func (p Provider) String() string {
	if !p.known() {
		return "provider(" + strconv.Itoa(int(p)) + ")"
	}
	return capabilities[p].name
}

// MinZoom returns the lowest z (widest view) the provider serves.
func (p Provider) MinZoom() int32 {
	if !p.known() {
		return 0
	}
	return capabilities[p].minZoom
}

// MaxZoom returns the highest z (coarsest tiles) the provider serves.
func (p Provider) MaxZoom() int32 {
	if !p.known() {
		return -1
	}
	return capabilities[p].maxZoom
}

// Balanced reports whether requests are spread across numbered hostnames.
func (p Provider) Balanced() bool {
	return p.known() && capabilities[p].balanced
}

// Providers lists every known provider in persisted order.
func Providers() []Provider {
	ps := make([]Provider, 0, numProviders)
	for p := Provider(0); p < numProviders; p++ {
		ps = append(ps, p)
	}
	return ps
}

// ParseProvider accepts either a provider name ("ve-road") or its number.
func ParseProvider(s string) (Provider, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if n, err := strconv.ParseInt(s, 10, 32); err == nil {
		p := Provider(n)
		if !p.known() {
			return NoProvider, fmt.Errorf("%w: %d", ErrUnknownProvider, n)
		}
		return p, nil
	}
	for p := Provider(0); p < numProviders; p++ {
		if capabilities[p].name == s {
			return p, nil
		}
	}
	return NoProvider, fmt.Errorf("%w: %q", ErrUnknownProvider, s)
}
