package dds

import "math"

func srgbToLinear(v float32) float32 {
	if v <= 0.04045 {
		return v / 12.92
	}
	return float32(math.Pow((float64(v)+0.055)/1.055, 2.4))
}

func linearToSRGB(v float32) float32 {
	if v <= 0.0031308 {
		if v < 0 {
			return 0
		}
		return v * 12.92
	}
	return float32(1.055*math.Pow(float64(v), 1/2.4) - 0.055)
}

// decodeGammaRow converts the colour channels of an RGBA float row from sRGB
// to linear light in place.
func decodeGammaRow(row []float32) {
	for i := 0; i+3 < len(row); i += 4 {
		row[i] = srgbToLinear(row[i])
		row[i+1] = srgbToLinear(row[i+1])
		row[i+2] = srgbToLinear(row[i+2])
	}
}

func encodeGammaRow(row []float32) {
	for i := 0; i+3 < len(row); i += 4 {
		row[i] = linearToSRGB(row[i])
		row[i+1] = linearToSRGB(row[i+1])
		row[i+2] = linearToSRGB(row[i+2])
	}
}
