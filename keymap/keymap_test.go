package keymap_test

import (
	"errors"
	"slices"
	"testing"

	"deedles.dev/chlorostart/keymap"
)

const sample = `xkb_keymap {
xkb_keycodes "evdev+aliases(qwerty)" {
	minimum = 8;
	maximum = 255;
	<ESC>                = 9;
	<AE01>               = 10;
	<TAB>                = 23;
	<AD01>               = 24;
	<LFSH>               = 50;
	indicator 1 = "Caps Lock";
	alias <LatQ>         = <AD01>;
};

xkb_types "complete" {
	virtual_modifiers NumLock,Alt;
	type "ONE_LEVEL" {
		modifiers= none;
		level_name[Level1]= "Any";
	};
};

// The symbols section.
xkb_symbols "pc+us+inet(evdev)" {
	name[group1]="English (US)";

	key <ESC>                {	[          Escape ] };
	key <AE01>               {	[               1,          exclam ] };
	key <TAB>                {
		type= "ONE_LEVEL",
		symbols[Group1]= [             Tab,    ISO_Left_Tab ]
	};
	key <LatQ>               {	[               q,               Q ] };
	key <LFSH>               {
		type= "ONE_LEVEL",
		symbols[Group1]= [         Shift_L ],
		actions[Group1]= [ SetMods(modifiers=Shift) ]
	};
	key <NONE>               {	[          Unused ] };
	modifier_map Shift { <LFSH> };
};

};
` + "\x00"

func TestParse(t *testing.T) {
	m, err := keymap.Parse([]byte(sample))
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		code uint32
		want []string
	}{
		{9, []string{"Escape"}},
		{10, []string{"1", "exclam"}},
		{23, []string{"Tab", "ISO_Left_Tab"}},
		{24, []string{"q", "Q"}},
		{50, []string{"Shift_L"}},
	}
	for _, test := range tests {
		if got := m.Symbols(test.code); !slices.Equal(got, test.want) {
			t.Errorf("Symbols(%v) = %q, want %q", test.code, got, test.want)
		}
	}
	if len(m) != len(tests) {
		t.Errorf("map has %v entries, want %v: %v", len(m), len(tests), m)
	}

	if !m.Has(9, "Escape") {
		t.Error("Escape not bound to 9")
	}
	if m.Has(10, "Escape") {
		t.Error("Escape bound to 10")
	}
	if !m.HasAny(24, []string{"Escape", "Q"}) {
		t.Error("HasAny missed Q")
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		check func(error) bool
	}{
		{
			name:  "NoKeymap",
			input: `xkb_symbols "x" { key <ESC> { [ Escape ] }; };`,
			check: func(err error) bool { return errors.Is(err, keymap.ErrNoKeymap) },
		},
		{
			name:  "NoSymbols",
			input: `xkb_keymap { xkb_keycodes "x" { <ESC> = 9; }; };`,
			check: func(err error) bool {
				var serr keymap.SectionError
				return errors.As(err, &serr) && (serr.Section == "xkb_symbols")
			},
		},
		{
			name:  "Unterminated",
			input: `xkb_keymap { xkb_keycodes "x" { <ESC> = 9;`,
			check: func(err error) bool { return errors.Is(err, keymap.ErrUnterminated) },
		},
		{
			name:  "UnterminatedString",
			input: `xkb_keymap { xkb_keycodes "x`,
			check: func(err error) bool { return errors.Is(err, keymap.ErrUnterminated) },
		},
		{
			name:  "StrayBrace",
			input: `xkb_keymap { }; };`,
			check: func(err error) bool {
				var serr keymap.SyntaxError
				return errors.As(err, &serr) && (serr.Offset == 16)
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := keymap.Parse([]byte(test.input))
			if !test.check(err) {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestParseBracesInStrings(t *testing.T) {
	input := `xkb_keymap {
		xkb_keycodes "a{b}" { <ESC> = 9; };
		xkb_symbols "c;d" { name[group1]="}{"; key <ESC> { [ Escape ] }; };
	};`

	m, err := keymap.Parse([]byte(input))
	if err != nil {
		t.Fatal(err)
	}
	if !m.Has(9, "Escape") {
		t.Fatalf("Escape missing: %v", m)
	}
}
