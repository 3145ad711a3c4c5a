/*
Package permission mediates access to sensitive channels.

Each channel starts unset and moves to granted or denied exactly once per
process. The first request on an unset channel queues a prompt; the user
resolves prompts strictly in FIFO order and the decision is cached, so later
requests on the channel return immediately without a new prompt.

Waiting on a human is explicit: Request returns a Ticket whose Wait honours
a context, and Ensure wraps that for callers that just want a bool.

	ok, err := broker.Ensure(ctx, types.ChannelStorage, "Store files in browser storage")
	if err != nil {
		return err // ctx cancelled while the prompt was pending
	}
	if !ok {
		return &permission.DeniedError{Channel: types.ChannelStorage}
	}
*/
package permission
