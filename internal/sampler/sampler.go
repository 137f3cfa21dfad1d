// Package sampler extracts averaged color patches from raw pixel buffers at
// fixed 3×3 grid coordinates.
package sampler

import (
	"errors"
	"fmt"

	"github.com/brunoaduarte/rubik-solver/internal/types"
)

var (
	// ErrBufferUnavailable indicates the pixel buffer has no accessible
	// backing memory. The frame must be skipped.
	ErrBufferUnavailable = errors.New("pixel buffer unavailable")

	// ErrIncompleteSample indicates fewer than 9 patches yielded at least
	// one in-bounds pixel (degenerate geometry). The frame must be skipped.
	ErrIncompleteSample = errors.New("incomplete sample: not all patches in bounds")
)

const (
	gridSize = 3
	// minPatchHalf is the minimum patch half-width in pixels.
	minPatchHalf = 2
	// patchDivisor controls the patch size relative to the grid step.
	patchDivisor = 6

	bytesPerPixel = 4 // BGRA
)

// Sample extracts 9 averaged color patches from the buffer in row-major order
// (row 0 first, column 0 first within each row), matching FaceReading layout.
//
// The grid is fixed relative to the frame: step = dimension/4 per axis, grid
// origin = buffer center minus one step in each axis. Each cell is averaged
// over a square patch of half-width max(2, min(stepX, stepY)/6) to reduce
// sensor noise; integer channel accumulation, then normalization to [0,1].
//
// The buffer's read lock is held only for the duration of the call and is
// released on every exit path.
func Sample(buf types.PixelBuffer) ([types.StickersPerFace]types.ColorSample, error) {
	var samples [types.StickersPerFace]types.ColorSample

	width, height, stride := buf.Bounds()

	data, err := buf.Lock()
	if err != nil {
		return samples, fmt.Errorf("%w: %w", ErrBufferUnavailable, err)
	}
	defer buf.Unlock()

	stepX := width / 4
	stepY := height / 4
	originX := width/2 - stepX
	originY := height/2 - stepY

	half := stepX
	if stepY < half {
		half = stepY
	}
	half /= patchDivisor
	if half < minPatchHalf {
		half = minPatchHalf
	}

	for row := 0; row < gridSize; row++ {
		for col := 0; col < gridSize; col++ {
			cx := originX + col*stepX
			cy := originY + row*stepY

			var sumB, sumG, sumR uint64
			var count uint64

			for y := cy - half; y <= cy+half; y++ {
				if y < 0 || y >= height {
					continue
				}
				rowOff := y * stride
				for x := cx - half; x <= cx+half; x++ {
					if x < 0 || x >= width {
						continue
					}
					off := rowOff + x*bytesPerPixel
					if off+2 >= len(data) {
						continue
					}
					sumB += uint64(data[off])
					sumG += uint64(data[off+1])
					sumR += uint64(data[off+2])
					count++
				}
			}

			if count == 0 {
				return samples, fmt.Errorf("%w: patch (%d,%d)", ErrIncompleteSample, row, col)
			}

			samples[row*gridSize+col] = types.ColorSample{
				R: float64(sumR) / float64(count) / 255.0,
				G: float64(sumG) / float64(count) / 255.0,
				B: float64(sumB) / float64(count) / 255.0,
			}
		}
	}

	return samples, nil
}
