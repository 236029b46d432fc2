package keysym

// Built-in name table, modeled on lexer/keywords.go's static,
// init()-populated keyword table: a flat list of (name, value) pairs
// assembled once and indexed through maps for O(1) lookup.
//
// Keysym values below 0x100 follow the Latin-1 / ASCII convention (the
// keysym for 'A' is the same numeric value as the ASCII byte 'A'); the
// function-key, modifier, and dead-key values above 0xfe00 follow the
// publicly documented X11 keysymdef.h numbering so that a Resolver
// swapped in from a real X11 keysym database lines up with this one.

type nameEntry struct {
	name string
	sym  Keysym
}

var nameTable = buildNameTable()

func buildNameTable() []nameEntry {
	var t []nameEntry

	// ASCII letters, both cases, are their own keysym value.
	for c := Keysym('a'); c <= Keysym('z'); c++ {
		t = append(t, nameEntry{string(rune(c)), c})
	}
	for c := Keysym('A'); c <= Keysym('Z'); c++ {
		t = append(t, nameEntry{string(rune(c)), c})
	}
	for c := Keysym('0'); c <= Keysym('9'); c++ {
		t = append(t, nameEntry{string(rune(c)), c})
	}

	t = append(t, []nameEntry{
		{"space", 0x020},
		{"exclam", 0x021},
		{"quotedbl", 0x022},
		{"numbersign", 0x023},
		{"dollar", 0x024},
		{"percent", 0x025},
		{"ampersand", 0x026},
		{"apostrophe", 0x027},
		{"parenleft", 0x028},
		{"parenright", 0x029},
		{"asterisk", 0x02a},
		{"plus", 0x02b},
		{"comma", 0x02c},
		{"minus", 0x02d},
		{"period", 0x02e},
		{"slash", 0x02f},
		{"colon", 0x03a},
		{"semicolon", 0x03b},
		{"less", 0x03c},
		{"equal", 0x03d},
		{"greater", 0x03e},
		{"question", 0x03f},
		{"at", 0x040},
		{"bracketleft", 0x05b},
		{"backslash", 0x05c},
		{"bracketright", 0x05d},
		{"asciicircum", 0x05e},
		{"underscore", 0x05f},
		{"grave", 0x060},
		{"braceleft", 0x07b},
		{"bar", 0x07c},
		{"braceright", 0x07d},
		{"asciitilde", 0x07e},

		// Control / editing keys.
		{"BackSpace", 0xff08},
		{"Tab", 0xff09},
		{"Linefeed", 0xff0a},
		{"Clear", 0xff0b},
		{"Return", 0xff0d},
		{"Pause", 0xff13},
		{"Scroll_Lock", 0xff14},
		{"Escape", 0xff1b},
		{"Delete", 0xffff},
		{"Home", 0xff50},
		{"Left", 0xff51},
		{"Up", 0xff52},
		{"Right", 0xff53},
		{"Down", 0xff54},
		{"Page_Up", 0xff55},
		{"Page_Down", 0xff56},
		{"End", 0xff57},
		{"Insert", 0xff63},
		{"Num_Lock", 0xff7f},
		{"Multi_key", 0xff20},
		{"Mode_switch", 0xff7e},

		// Modifiers.
		{"Shift_L", 0xffe1},
		{"Shift_R", 0xffe2},
		{"Control_L", 0xffe3},
		{"Control_R", 0xffe4},
		{"Caps_Lock", 0xffe5},
		{"Shift_Lock", 0xffe6},
		{"Meta_L", 0xffe7},
		{"Meta_R", 0xffe8},
		{"Alt_L", 0xffe9},
		{"Alt_R", 0xffea},
		{"Super_L", 0xffeb},
		{"Super_R", 0xffec},
		{"Hyper_L", 0xffed},
		{"Hyper_R", 0xffee},
		{"ISO_Level3_Shift", 0xfe03},
		{"ISO_Level5_Shift", 0xfe11},

		// Dead keys.
		{"dead_grave", 0xfe50},
		{"dead_acute", 0xfe51},
		{"dead_circumflex", 0xfe52},
		{"dead_tilde", 0xfe53},
		{"dead_macron", 0xfe54},
		{"dead_breve", 0xfe55},
		{"dead_abovedot", 0xfe56},
		{"dead_diaeresis", 0xfe57},
		{"dead_abovering", 0xfe58},
		{"dead_doubleacute", 0xfe59},
		{"dead_caron", 0xfe5a},
		{"dead_cedilla", 0xfe5b},
		{"dead_ogonek", 0xfe5c},
	}...)

	for i := 1; i <= 24; i++ {
		t = append(t, nameEntry{fName(i), Keysym(0xffbe + i - 1)})
	}

	return t
}

func fName(n int) string {
	// "F1".."F24" without importing strconv at table-build time.
	digits := [3]byte{}
	d := len(digits)
	if n == 0 {
		return "F0"
	}
	for n > 0 {
		d--
		digits[d] = byte('0' + n%10)
		n /= 10
	}
	return "F" + string(digits[d:])
}

// modifierTable lists the closed set of modifier-like keysyms the
// matcher ignores, kept sorted for binary search.
var modifierTable = sortedModifiers()

func sortedModifiers() []Keysym {
	mods := []Keysym{
		0xffe1, // Shift_L
		0xffe2, // Shift_R
		0xffe3, // Control_L
		0xffe4, // Control_R
		0xffe5, // Caps_Lock
		0xffe6, // Shift_Lock
		0xffe7, // Meta_L
		0xffe8, // Meta_R
		0xffe9, // Alt_L
		0xffea, // Alt_R
		0xffeb, // Super_L
		0xffec, // Super_R
		0xffed, // Hyper_L
		0xffee, // Hyper_R
		0xff7f, // Num_Lock
		0xff14, // Scroll_Lock
		0xfe03, // ISO_Level3_Shift
		0xfe11, // ISO_Level5_Shift
		0xff7e, // Mode_switch
	}
	for i := 1; i < len(mods); i++ {
		for j := i; j > 0 && mods[j-1] > mods[j]; j-- {
			mods[j-1], mods[j] = mods[j], mods[j-1]
		}
	}
	return mods
}

// unicodeTable covers keysyms whose Unicode value isn't derivable by
// the generic Latin-1 / XKB_KEYSYM_UNICODE_OFFSET rules in Unicode().
var unicodeTable = map[Keysym]rune{
	0xff0d: '\r', // Return
	0xff08: '\b', // BackSpace
	0xff09: '\t', // Tab
}
