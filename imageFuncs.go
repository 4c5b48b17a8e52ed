package main

import (
	"errors"
	"image"
	"image/png"
	"math"
	"os"
	"sort"
)

// MatrixToGray16Data -------------------- Data PNG (Gray16, fixed physical scaling) --------------------
// Mapping: Y16 = round(v * scale), clamped to [0, 65535]
func MatrixToGray16Data(m [][]float64, scale float64) (*image.Gray16, error) {
	if len(m) == 0 || len(m[0]) == 0 {
		return nil, errors.New("empty matrix")
	}
	if scale <= 0 {
		return nil, errors.New("scale must be > 0")
	}
	h := len(m)
	w := len(m[0])
	for y := 1; y < h; y++ {
		if len(m[y]) != w {
			return nil, errors.New("ragged matrix")
		}
	}

	img := image.NewGray16(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		row := y * img.Stride
		for x := 0; x < w; x++ {
			v := m[y][x]
			if math.IsNaN(v) || math.IsInf(v, 0) {
				// write 0
				i := row + 2*x
				img.Pix[i], img.Pix[i+1] = 0, 0
				continue
			}

			u := math.Round(v * scale)
			if u < 0 {
				u = 0
			} else if u > 65535 {
				u = 65535
			}
			y16 := uint16(u)

			// Gray16 Pix is big-endian per pixel: high then low
			i := row + 2*x
			img.Pix[i] = uint8(y16 >> 8)
			img.Pix[i+1] = uint8(y16)
		}
	}
	return img, nil
}

// MatrixToGrayViewPercentile -------------------- View PNG (Gray8, auto-stretch) --------------------
// Maps the pLow..pHigh percentile range of the matrix to 0..255 and clamps,
// which keeps a few extreme samples from flattening the rest of the image.
func MatrixToGrayViewPercentile(m [][]float64, pLow, pHigh float64) (*image.Gray, error) {
	if len(m) == 0 || len(m[0]) == 0 {
		return nil, errors.New("empty matrix")
	}
	h := len(m)
	w := len(m[0])
	for y := 1; y < h; y++ {
		if len(m[y]) != w {
			return nil, errors.New("ragged matrix")
		}
	}
	if !(0 <= pLow && pLow < pHigh && pHigh <= 100) {
		return nil, errors.New("percentiles must satisfy 0 <= p Low < pHigh <= 100")
	}

	// Collect finite values for percentile computation
	vals := make([]float64, 0, h*w)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := m[y][x]
			if !math.IsNaN(v) && !math.IsInf(v, 0) {
				vals = append(vals, v)
			}
		}
	}
	if len(vals) == 0 {
		return nil, errors.New("matrix has no finite values")
	}

	sort.Float64s(vals)

	// Helper to get percentile value
	percentile := func(p float64) float64 {
		if p <= 0 {
			return vals[0]
		}
		if p >= 100 {
			return vals[len(vals)-1]
		}
		pos := (p / 100.0) * float64(len(vals)-1)
		i := int(math.Floor(pos))
		f := pos - float64(i)
		if i >= len(vals)-1 {
			return vals[len(vals)-1]
		}
		return vals[i]*(1-f) + vals[i+1]*f
	}

	lo := percentile(pLow)
	hi := percentile(pHigh)
	if hi == lo {
		hi = lo + 1 // avoid divide-by-zero; image becomes mostly constant
	}

	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		row := y * img.Stride
		for x := 0; x < w; x++ {
			v := m[y][x]
			if math.IsNaN(v) || math.IsInf(v, 0) {
				img.Pix[row+x] = 0
				continue
			}
			t := (v - lo) / (hi - lo) // normalize
			if t < 0 {
				t = 0
			} else if t > 1 {
				t = 1
			}
			img.Pix[row+x] = uint8(math.Round(t * 255.0))
		}
	}
	return img, nil
}

// UpsampleNearest replicates each sample of a small matrix into a
// factor x factor block. Per-order efficiency maps are only a few pixels
// across, so previews of them need this before encoding.
func UpsampleNearest(m [][]float64, factor int) [][]float64 {
	if factor < 1 {
		factor = 1
	}
	out := make([][]float64, len(m)*factor)
	for r := range out {
		src := m[r/factor]
		row := make([]float64, len(src)*factor)
		for c := range row {
			row[c] = src[c/factor]
		}
		out[r] = row
	}
	return out
}

func SaveGrayPNG(filename string, img *image.Gray) (err error) {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return png.Encode(f, img)
}

func SaveGray16PNG(filename string, img *image.Gray16) (err error) {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	return png.Encode(f, img)
}
