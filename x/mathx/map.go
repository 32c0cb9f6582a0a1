package mathx

// ScaleU32 maps x in [0,inMax] onto [0,outMax] with 64-bit intermediates.
// Inputs above inMax clamp to outMax; inMax == 0 yields 0.
func ScaleU32(x, inMax, outMax uint32) uint32 {
	if inMax == 0 {
		return 0
	}
	if x >= inMax {
		return outMax
	}
	return uint32(uint64(x) * uint64(outMax) / uint64(inMax))
}
