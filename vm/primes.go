package vm

// bucketPrimes is the growth schedule for the trait table's hash views.
var bucketPrimes = []int{
	7, 17, 37, 79, 163, 331, 673, 1361, 2729, 5471, 10949, 21911, 43853,
	87719, 175447, 350899, 701819, 1403641, 2807303, 5614657, 11229331,
}

// nextPrime returns the smallest prime in the schedule that is >= n,
// falling back to the next odd number not divisible by small primes when the
// schedule is exhausted.
func nextPrime(n int) int {
	for _, p := range bucketPrimes {
		if p >= n {
			return p
		}
	}
	if n%2 == 0 {
		n++
	}
	for !isPrime(n) {
		n += 2
	}
	return n
}

func isPrime(n int) bool {
	if n < 2 {
		return false
	}
	for d := 3; d*d <= n; d += 2 {
		if n%d == 0 {
			return false
		}
	}
	return n == 2 || n%2 != 0
}
