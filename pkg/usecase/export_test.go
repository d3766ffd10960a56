package usecase

// StateParam exposes the generated OAuth state for relay tests
func (c *Coordinator) StateParam() string {
	return c.state
}

var (
	GenerateState = generateState
	OriginOf      = originOf
	CleanReasons  = cleanReasons
	FailureText   = failureText
)
