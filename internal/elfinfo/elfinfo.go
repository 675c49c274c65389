// Package elfinfo extracts the RTT control block address and a chip hint
// from a firmware ELF image.
package elfinfo

import (
	"debug/elf"
	"fmt"
	"strings"
)

// rttSymbol is the control block SEGGER RTT firmware exports.
const rttSymbol = "_SEGGER_RTT"

// Info is the result of inspecting a firmware image.
type Info struct {
	// RTTAddress is the control block address formatted as "0xXXXXXXXX".
	RTTAddress string `json:"rtt_address"`
	// ChipHint is a best-effort chip family guess, empty when unknown.
	ChipHint string `json:"chip_hint,omitempty"`
}

// Symbol is a name/address pair from the ELF symbol table.
type Symbol struct {
	Name  string
	Value uint64
}

// Inspect opens an ELF file and extracts the RTT address and chip hint.
func Inspect(path string) (Info, error) {
	f, err := elf.Open(path)
	if err != nil {
		return Info{}, fmt.Errorf("cannot parse ELF %s: %w", path, err)
	}
	defer f.Close()

	syms, err := f.Symbols()
	if err != nil {
		return Info{}, fmt.Errorf("cannot read ELF symbols: %w", err)
	}

	symbols := make([]Symbol, 0, len(syms))
	var rttAddr uint64
	found := false
	for _, s := range syms {
		symbols = append(symbols, Symbol{Name: s.Name, Value: s.Value})
		if s.Name == rttSymbol {
			rttAddr = s.Value
			found = true
		}
	}
	if !found {
		return Info{}, fmt.Errorf("%s symbol not found in ELF", rttSymbol)
	}

	hint := ChipHint(f.Machine, f.Entry, symbols)
	return Info{
		RTTAddress: fmt.Sprintf("0x%08X", rttAddr),
		ChipHint:   strings.ReplaceAll(hint, "-", "_"),
	}, nil
}

// ChipHint guesses the chip family from config symbols the firmware build
// embeds, falling back to the memory map. Returns "" when nothing matches.
func ChipHint(machine elf.Machine, entry uint64, symbols []Symbol) string {
	if machine != elf.EM_ARM {
		return ""
	}

	hasSymbol := func(needle string) bool {
		for _, s := range symbols {
			if strings.Contains(s.Name, needle) {
				return true
			}
		}
		return false
	}
	rttAddr := func() uint64 {
		for _, s := range symbols {
			if s.Name == rttSymbol {
				return s.Value
			}
		}
		return 0
	}

	switch {
	case hasSymbol("NRF5340") || hasSymbol("nrf5340"):
		return "nRF5340_xxAA"
	case hasSymbol("NRF52840") || hasSymbol("nrf52840"):
		return "nRF52840_xxAA"
	case hasSymbol("NRF52833") || hasSymbol("nrf52833"):
		return "nRF52833_xxAA"
	case hasSymbol("NRF52832") || hasSymbol("nrf52832"):
		return "nRF52832_xxAA"
	case hasSymbol("NRF9160") || hasSymbol("nrf9160"):
		return "nRF9160_xxAA"
	case hasSymbol("NRF9151") || hasSymbol("nrf9151") || hasSymbol("NRF91X1") || hasSymbol("nrf91x1"):
		return "nRF9151_xxAA"
	case hasSymbol("NRF9161") || hasSymbol("nrf9161"):
		return "nRF9161_xxAA"
	case hasSymbol("STM32") || hasSymbol("stm32"):
		return "STM32 (check exact variant)"
	}

	// Fall back to the memory map. Nordic parts boot from low flash; the
	// nRF5340 net core keeps its RAM at 0x21000000.
	if entry < 0x0010_0000 {
		switch addr := rttAddr(); {
		case addr >= 0x2100_0000:
			return "nRF5340_xxAA (net core?)"
		case addr >= 0x2000_0000:
			return "Nordic (nRF52/53/91, check variant)"
		}
	}
	return ""
}
