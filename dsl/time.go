package dsl

// IsTimeLiteral reports whether s has the time-literal marker. A marked
// string that fails strict validation in ParseTimeLiteral is a TIME_ERROR,
// not a candidate for any other resolution.
func IsTimeLiteral(s string) bool {
	return len(s) > 0 && s[0] == '@'
}

// ParseTimeLiteral converts an "@HH:MM:SS" literal to seconds since
// midnight. The input must be exactly 9 characters with colons at positions
// 3 and 6 and digits everywhere else; hour 0-23, minute and second 0-59.
// Returns -1 on any violation.
func ParseTimeLiteral(s string) int {
	if len(s) != 9 {
		return -1
	}
	if s[0] != '@' || s[3] != ':' || s[6] != ':' {
		return -1
	}
	for _, pos := range [...]int{1, 2, 4, 5, 7, 8} {
		if s[pos] < '0' || s[pos] > '9' {
			return -1
		}
	}

	hours := int(s[1]-'0')*10 + int(s[2]-'0')
	minutes := int(s[4]-'0')*10 + int(s[5]-'0')
	seconds := int(s[7]-'0')*10 + int(s[8]-'0')

	if hours > 23 || minutes > 59 || seconds > 59 {
		return -1
	}
	return hours*3600 + minutes*60 + seconds
}
