package normalization

// CalculateNameNumerology maps a name to a single digit by summing letter values
// (a=1..i=9, j=1..r=9, s=1..z=8) and digit-summing until the result is <= 9.
// Non-letters count as 0; a name with no letters yields 0.
func CalculateNameNumerology(name string) int {
	total := 0
	for _, r := range name {
		total += letterValue(r)
	}
	for total > 9 {
		total = digitSum(total)
	}
	return total
}

func letterValue(r rune) int {
	switch {
	case r >= 'a' && r <= 'z':
		return int(r-'a')%9 + 1
	case r >= 'A' && r <= 'Z':
		return int(r-'A')%9 + 1
	default:
		return 0
	}
}

func digitSum(n int) int {
	if n < 0 {
		n = -n
	}
	s := 0
	for n > 0 {
		s += n % 10
		n /= 10
	}
	return s
}

// MasterNumber combines the three numerology inputs. Negative inputs count as 0. It
// returns 0 unless crystal is positive and at least one of color/chakra is positive.
// A sum above 9 is digit-summed repeatedly; a reduced value of exactly 11, 22 or 33
// is kept as a master number.
func MasterNumber(crystal, color, chakra int) int {
	crystal, color, chakra = max(crystal, 0), max(color, 0), max(chakra, 0)
	if crystal == 0 || (color == 0 && chakra == 0) {
		return 0
	}
	sum := crystal + color + chakra
	for sum > 9 {
		sum = digitSum(sum)
		if isMasterNumber(sum) {
			return sum
		}
	}
	return sum
}

func isMasterNumber(n int) bool {
	return n == 11 || n == 22 || n == 33
}
