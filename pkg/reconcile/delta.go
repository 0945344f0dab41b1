package reconcile

// Delta returns the fields of proposed whose (field, value) pair is not
// already present in existing. The comparison is asymmetric: fields that
// exist only on the device are never part of the delta, so configuration
// the operator did not ask about is left alone.
//
// An empty delta means the device already matches the request and the pass
// is a no-op.
func Delta(proposed, existing State) State {
	delta := State{}
	for field, value := range proposed {
		if current, ok := existing[field]; !ok || current != value {
			delta[field] = value
		}
	}
	return delta
}
