package back

func sliceSet[S ~[]E, E any, I interface{ ~int }](s S, i I, x E) S {
	var z E

	for int(i) >= len(s) {
		s = append(s, z)
	}

	s[i] = x

	return s
}

func sliceGet[S ~[]E, E any, I interface{ ~int }](s S, i I) (x E) {
	if int(i) < len(s) {
		x = s[i]
	}

	return x
}
