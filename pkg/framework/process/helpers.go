package process

// InPlace copies the inputs into the outputs and returns the output channels
// that carry signal, ready for in-place processing.
func (c *Context) InPlace() [][]float32 {
	c.PassThrough()
	return c.Output[:c.GetNumChannels()]
}

// GetNumChannels returns the minimum of input and output channels
func (c *Context) GetNumChannels() int {
	return min(c.NumInputChannels(), c.NumOutputChannels())
}
