package utils

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
)

// MapRange mapeia linearmente um valor do intervalo [inMin, inMax] para o
// intervalo [outMin, outMax], saturando nas extremidades (mesmo comportamento
// de uma interpolação com clamp)
func MapRange(value, inMin, inMax, outMin, outMax float64) float64 {
	if inMax == inMin {
		return outMin
	}

	// Saturar nas bordas do intervalo de entrada
	if inMin < inMax {
		if value <= inMin {
			return outMin
		}
		if value >= inMax {
			return outMax
		}
	} else {
		if value >= inMin {
			return outMin
		}
		if value <= inMax {
			return outMax
		}
	}

	ratio := (value - inMin) / (inMax - inMin)
	return outMin + ratio*(outMax-outMin)
}

// ClampFloat limita um valor ao intervalo [min, max]
func ClampFloat(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// Uint16ToBytes converte um uint16 para bytes (big-endian)
func Uint16ToBytes(val uint16) []byte {
	bytes := make([]byte, 2)
	binary.BigEndian.PutUint16(bytes, val)
	return bytes
}

// BytesToUint16 converte bytes (big-endian) para uint16
func BytesToUint16(bytes []byte) uint16 {
	return binary.BigEndian.Uint16(bytes)
}

// Uint64ToBytes converte um uint64 para bytes (big-endian)
func Uint64ToBytes(val uint64) []byte {
	bytes := make([]byte, 8)
	binary.BigEndian.PutUint64(bytes, val)
	return bytes
}

// BytesToUint64 converte bytes (big-endian) para uint64
func BytesToUint64(bytes []byte) uint64 {
	return binary.BigEndian.Uint64(bytes)
}

// FormatFloat formata um float com precisão específica
func FormatFloat(value float64, precision int) string {
	format := "%." + strconv.Itoa(precision) + "f"
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf(format, value), "0"), ".")
}
