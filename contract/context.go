package contract

import "juice_treasury/sdk"

// Call is scoped to the currently executing entry point. Allocators receive it so they can
// re-enter the engine; nested entry points get a fresh Call with their own snapshot.
type Call struct {
	env    sdk.Env
	engine *Engine
	op     string
}

// Sender returns the address of the caller.
func (c *Call) Sender() sdk.Address {
	return c.env.Sender
}

// Now is the timestamp every read and write of this call uses.
func (c *Call) Now() int64 {
	return c.env.Timestamp
}

// TxID identifies the call in logs.
func (c *Call) TxID() string {
	return c.env.TxID
}

func (c *Call) Engine() *Engine {
	return c.engine
}

// Op is the entry point name, as counted in metrics.
func (c *Call) Op() string {
	return c.op
}
