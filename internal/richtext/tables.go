package richtext

// Glyph tables for the styled-text codec. Keys are the 52 ASCII Latin
// letters; every other rune is absent and passes through unchanged.

// boldGlyphs maps to Mathematical Sans-Serif Bold (U+1D5D4..).
var boldGlyphs = map[rune]string{
	'A': "𝗔",
	'B': "𝗕",
	'C': "𝗖",
	'D': "𝗗",
	'E': "𝗘",
	'F': "𝗙",
	'G': "𝗚",
	'H': "𝗛",
	'I': "𝗜",
	'J': "𝗝",
	'K': "𝗞",
	'L': "𝗟",
	'M': "𝗠",
	'N': "𝗡",
	'O': "𝗢",
	'P': "𝗣",
	'Q': "𝗤",
	'R': "𝗥",
	'S': "𝗦",
	'T': "𝗧",
	'U': "𝗨",
	'V': "𝗩",
	'W': "𝗪",
	'X': "𝗫",
	'Y': "𝗬",
	'Z': "𝗭",
	'a': "𝗮",
	'b': "𝗯",
	'c': "𝗰",
	'd': "𝗱",
	'e': "𝗲",
	'f': "𝗳",
	'g': "𝗴",
	'h': "𝗵",
	'i': "𝗶",
	'j': "𝗷",
	'k': "𝗸",
	'l': "𝗹",
	'm': "𝗺",
	'n': "𝗻",
	'o': "𝗼",
	'p': "𝗽",
	'q': "𝗾",
	'r': "𝗿",
	's': "𝘀",
	't': "𝘁",
	'u': "𝘂",
	'v': "𝘃",
	'w': "𝘄",
	'x': "𝘅",
	'y': "𝘆",
	'z': "𝘇",
}

// italicGlyphs maps to Mathematical Sans-Serif Italic (U+1D608..).
var italicGlyphs = map[rune]string{
	'A': "𝘈",
	'B': "𝘉",
	'C': "𝘊",
	'D': "𝘋",
	'E': "𝘌",
	'F': "𝘍",
	'G': "𝘎",
	'H': "𝘏",
	'I': "𝘐",
	'J': "𝘑",
	'K': "𝘒",
	'L': "𝘓",
	'M': "𝘔",
	'N': "𝘕",
	'O': "𝘖",
	'P': "𝘗",
	'Q': "𝘘",
	'R': "𝘙",
	'S': "𝘚",
	'T': "𝘛",
	'U': "𝘜",
	'V': "𝘝",
	'W': "𝘞",
	'X': "𝘟",
	'Y': "𝘠",
	'Z': "𝘡",
	'a': "𝘢",
	'b': "𝘣",
	'c': "𝘤",
	'd': "𝘥",
	'e': "𝘦",
	'f': "𝘧",
	'g': "𝘨",
	'h': "𝘩",
	'i': "𝘪",
	'j': "𝘫",
	'k': "𝘬",
	'l': "𝘭",
	'm': "𝘮",
	'n': "𝘯",
	'o': "𝘰",
	'p': "𝘱",
	'q': "𝘲",
	'r': "𝘳",
	's': "𝘴",
	't': "𝘵",
	'u': "𝘶",
	'v': "𝘷",
	'w': "𝘸",
	'x': "𝘹",
	'y': "𝘺",
	'z': "𝘻",
}

// boldItalicGlyphs maps to Mathematical Sans-Serif Bold Italic (U+1D63C..).
var boldItalicGlyphs = map[rune]string{
	'A': "𝘼",
	'B': "𝘽",
	'C': "𝘾",
	'D': "𝘿",
	'E': "𝙀",
	'F': "𝙁",
	'G': "𝙂",
	'H': "𝙃",
	'I': "𝙄",
	'J': "𝙅",
	'K': "𝙆",
	'L': "𝙇",
	'M': "𝙈",
	'N': "𝙉",
	'O': "𝙊",
	'P': "𝙋",
	'Q': "𝙌",
	'R': "𝙍",
	'S': "𝙎",
	'T': "𝙏",
	'U': "𝙐",
	'V': "𝙑",
	'W': "𝙒",
	'X': "𝙓",
	'Y': "𝙔",
	'Z': "𝙕",
	'a': "𝙖",
	'b': "𝙗",
	'c': "𝙘",
	'd': "𝙙",
	'e': "𝙚",
	'f': "𝙛",
	'g': "𝙜",
	'h': "𝙝",
	'i': "𝙞",
	'j': "𝙟",
	'k': "𝙠",
	'l': "𝙡",
	'm': "𝙢",
	'n': "𝙣",
	'o': "𝙤",
	'p': "𝙥",
	'q': "𝙦",
	'r': "𝙧",
	's': "𝙨",
	't': "𝙩",
	'u': "𝙪",
	'v': "𝙫",
	'w': "𝙬",
	'x': "𝙭",
	'y': "𝙮",
	'z': "𝙯",
}

// underlineGlyphs keeps the base letter; RenderRun appends combiningLowLine.
var underlineGlyphs = map[rune]string{
	'A': "A",
	'B': "B",
	'C': "C",
	'D': "D",
	'E': "E",
	'F': "F",
	'G': "G",
	'H': "H",
	'I': "I",
	'J': "J",
	'K': "K",
	'L': "L",
	'M': "M",
	'N': "N",
	'O': "O",
	'P': "P",
	'Q': "Q",
	'R': "R",
	'S': "S",
	'T': "T",
	'U': "U",
	'V': "V",
	'W': "W",
	'X': "X",
	'Y': "Y",
	'Z': "Z",
	'a': "a",
	'b': "b",
	'c': "c",
	'd': "d",
	'e': "e",
	'f': "f",
	'g': "g",
	'h': "h",
	'i': "i",
	'j': "j",
	'k': "k",
	'l': "l",
	'm': "m",
	'n': "n",
	'o': "o",
	'p': "p",
	'q': "q",
	'r': "r",
	's': "s",
	't': "t",
	'u': "u",
	'v': "v",
	'w': "w",
	'x': "x",
	'y': "y",
	'z': "z",
}
