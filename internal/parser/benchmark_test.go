package parser

import (
	"fmt"
	"strings"
	"testing"
)

// BenchmarkZephyrLine measures structured shell line recognition throughput.
func BenchmarkZephyrLine(b *testing.B) {
	p := NewTextParser()
	line := "[00:29:56.296,813] <inf> ble_manager: IU 3 ON"

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		p.ParseLine(line)
	}
}

// BenchmarkFallbackLine measures the worst case: every recognizer tried and
// rejected before the raw fallback fires.
func BenchmarkFallbackLine(b *testing.B) {
	p := NewTextParser()
	line := "plain printf output without any structure at all"

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		p.ParseLine(line)
	}
}

// BenchmarkParseTextThroughput measures sustained document parsing over a
// diverse line mix.
func BenchmarkParseTextThroughput(b *testing.B) {
	lines := make([]string, 1000)
	for i := range lines {
		switch i % 4 {
		case 0:
			lines[i] = fmt.Sprintf("[00:00:%02d.000,000] <inf> main: heartbeat %d", i%60, i)
		case 1:
			lines[i] = fmt.Sprintf("05> <NetCore>mesh relay %d", i)
		case 2:
			lines[i] = fmt.Sprintf("[%04d] [T1] [ERR] [<radio>] crc mismatch", i)
		case 3:
			lines[i] = fmt.Sprintf("raw counter tick %d", i)
		}
	}
	doc := strings.Join(lines, "\n")

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		ParseText(doc)
	}
}
