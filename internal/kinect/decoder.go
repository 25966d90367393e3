package kinect

import (
	"fmt"
	"time"

	"kinect_go/pkg/logger"
	"kinect_go/pkg/utils"
)

const (
	// frameHeaderSize é o tamanho fixo do cabeçalho de quadro em bytes
	frameHeaderSize = 14

	// frameMagic identifica um quadro de profundidade ("KD")
	frameMagic = 0x4B44

	// noFrameMagic identifica a resposta "sem quadro disponível" ("NF")
	noFrameMagic = 0x4E46

	// maxFrameDimension limita dimensões aceitas, contra cabeçalhos corrompidos
	maxFrameDimension = 4096
)

// decodeFrameHeader decodifica o cabeçalho binário de um quadro:
// magic(2) largura(2) altura(2) timestamp_ms(8), tudo big-endian
func decodeFrameHeader(header []byte) (width, height int, timestamp time.Time, err error) {
	if len(header) < frameHeaderSize {
		return 0, 0, time.Time{}, fmt.Errorf("cabeçalho de quadro truncado: %d bytes", len(header))
	}

	if logger.IsDebugEnabled() {
		hexDump := ""
		for _, b := range header {
			hexDump += fmt.Sprintf("%02X ", b)
		}
		logger.Debugf("Cabeçalho do quadro: %s", hexDump)
	}

	magic := utils.BytesToUint16(header[0:2])
	switch magic {
	case noFrameMagic:
		// O daemon sinaliza ausência transitória; o restante do cabeçalho
		// é preenchimento
		return 0, 0, time.Time{}, ErrNoFrame
	case frameMagic:
		// Quadro segue no fluxo
	default:
		return 0, 0, time.Time{}, fmt.Errorf("magic de quadro inválido: 0x%04X", magic)
	}

	width = int(utils.BytesToUint16(header[2:4]))
	height = int(utils.BytesToUint16(header[4:6]))
	if width <= 0 || height <= 0 || width > maxFrameDimension || height > maxFrameDimension {
		return 0, 0, time.Time{}, fmt.Errorf("dimensões de quadro inválidas: %dx%d", width, height)
	}

	millis := utils.BytesToUint64(header[6:14])
	timestamp = time.Unix(0, int64(millis)*int64(time.Millisecond))

	return width, height, timestamp, nil
}

// encodeFrameHeader monta um cabeçalho de quadro; usado pelo simulador de
// daemon nos testes
func encodeFrameHeader(width, height int, timestamp time.Time) []byte {
	header := make([]byte, 0, frameHeaderSize)
	header = append(header, utils.Uint16ToBytes(frameMagic)...)
	header = append(header, utils.Uint16ToBytes(uint16(width))...)
	header = append(header, utils.Uint16ToBytes(uint16(height))...)
	millis := uint64(timestamp.UnixNano() / int64(time.Millisecond))
	header = append(header, utils.Uint64ToBytes(millis)...)
	return header
}
