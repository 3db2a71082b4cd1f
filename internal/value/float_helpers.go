package value

// ToFloat coerces an Int or Float value to float64, for the "any float ⇒
// float" arithmetic coercion rule (§4.6/§9).
func ToFloat(v Value) (float64, bool) {
	return asFloat(v)
}
