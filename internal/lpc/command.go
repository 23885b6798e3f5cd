// Package lpc stands for "Local Procedure Call". It's a typed RPC-like mechanism implemented over Go channels, intended
// for querying long-running goroutines such as a session event loop.
package lpc

import (
	"context"
	"errors"

	"github.com/alanbriolat/download-prompt/generic"
	"github.com/alanbriolat/download-prompt/internal/sync_"
)

var (
	ErrClosed     = errors.New("command response already sent")
	ErrNoResponse = errors.New("no response")
)

// Command carries an argument to a goroutine and a single response back.
type Command[Arg any, Response any] struct {
	arg      Arg
	response generic.Result[Response]
	done     sync_.Event
}

func NewCommand[Arg any, Response any](arg Arg) *Command[Arg, Response] {
	return &Command[Arg, Response]{
		arg:      arg,
		response: generic.Err[Response](ErrNoResponse), // Default error if closed with no response
	}
}

func (c *Command[Arg, Response]) Arg() Arg {
	return c.arg
}

func (c *Command[Arg, Response]) Respond(response Response) error {
	return c.respond(generic.Ok(response))
}

func (c *Command[Arg, Response]) RespondError(err error) error {
	return c.respond(generic.Err[Response](err))
}

func (c *Command[Arg, Response]) respond(r generic.Result[Response]) error {
	if c.done.IsSet() {
		return ErrClosed
	}
	c.response = r
	c.Close()
	return nil
}

// Wait blocks until a response is sent, the command is closed, or ctx ends.
func (c *Command[Arg, Response]) Wait(ctx context.Context) (Response, error) {
	select {
	case <-c.done.Wait():
		return c.response.Parts()
	case <-ctx.Done():
		return generic.Err[Response](ctx.Err()).Parts()
	}
}

// Close ends the command; if no response was sent, Wait returns ErrNoResponse.
func (c *Command[Arg, Response]) Close() {
	c.done.Set()
}
