package opcodes

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTableIsTotal(t *testing.T) {
	require.Len(t, Table, 256)
}

func TestDocumentedSample(t *testing.T) {
	require.Equal(t, Opcode{LDA, Immediate, 2}, Table[0xA9])
	require.Equal(t, Opcode{JMP, Indirect, 5}, Table[0x6C])
	require.Equal(t, Opcode{BRK, Implicit, 7}, Table[0x00])
}

func TestUndocumentedFallsBackToNOP(t *testing.T) {
	for _, op := range []uint8{0x02, 0x1A, 0xEB, 0xFF} {
		e := Table[op]
		require.Equal(t, NOP, e.Mnemonic, "opcode %#02x", op)
		require.Equal(t, Implicit, e.Mode, "opcode %#02x", op)
		require.Greater(t, e.Cycles, 0, "opcode %#02x", op)
	}
}

func TestMnemonicString(t *testing.T) {
	require.Equal(t, "LDA", LDA.String())
	require.Equal(t, "BRK", BRK.String())
}
