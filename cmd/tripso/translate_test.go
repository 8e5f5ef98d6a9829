package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeCapture stores a raw IPv4 capture with a single packet.
func writeCapture(t *testing.T, path string, packet []byte) {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	writer := pcapgo.NewWriter(f)
	require.NoError(t, writer.WriteFileHeader(65535, layers.LinkTypeRaw))
	require.NoError(t, writer.WritePacket(gopacket.CaptureInfo{
		CaptureLength: len(packet),
		Length:        len(packet),
	}, packet))
}

// TestTranslateCmd_Flags checks the validation of the translation mode
// flags.
func TestTranslateCmd_Flags(t *testing.T) {
	for name, args := range map[string][]string{
		"no mode":   {"--in", "a.pcap", "--out", "b.pcap"},
		"both":      {"--to-cipso", "--to-astra", "--in", "a.pcap", "--out", "b.pcap"},
		"no input":  {"--to-cipso", "--out", "b.pcap"},
		"no output": {"--to-astra", "--in", "a.pcap"},
	} {
		cmd := translateCmd()
		cmd.SetArgs(args)
		cmd.SilenceErrors = true
		cmd.SilenceUsage = true
		assert.Error(t, cmd.Execute(), name)
	}
}

// TestTranslateCmd checks a capture translated from Astra to CIPSO.
func TestTranslateCmd(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.pcap")
	out := filepath.Join(dir, "out.pcap")

	// IPv4 header with a 4 bytes Astra label of level 1.
	packet := []byte{
		0x46, 0, 0, 24, 0, 0, 0, 0, 64, 17, 0, 0,
		10, 0, 0, 1, 10, 0, 0, 2,
		130, 4, 0xab, 0x02,
	}
	writeCapture(t, in, packet)

	cmd := translateCmd()
	cmd.SetArgs([]string{"--to-cipso", "--in", in, "--out", out, "--doi", "5"})
	require.NoError(t, cmd.Execute())

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	reader, err := pcapgo.NewReader(f)
	require.NoError(t, err)
	data, _, err := reader.ReadPacketData()
	require.NoError(t, err)

	require.Len(t, data, 32)
	assert.Equal(t, byte(0x48), data[0])
	assert.Equal(t, []byte{134, 10, 0, 0, 0, 5, 1, 4, 0, 1, 0, 0}, data[20:])
}
