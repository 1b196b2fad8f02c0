package testutil

import (
	tele "gopkg.in/telebot.v3"
)

// FakeBotContext records what a handler sends; methods it doesn't override panic
type FakeBotContext struct {
	tele.Context

	User      *tele.User
	TextValue string
	Sent      []interface{}
	SentOpts  [][]interface{}
}

func (c *FakeBotContext) Sender() *tele.User {
	return c.User
}

func (c *FakeBotContext) Text() string {
	return c.TextValue
}

func (c *FakeBotContext) Send(what interface{}, opts ...interface{}) error {
	c.Sent = append(c.Sent, what)
	c.SentOpts = append(c.SentOpts, opts)
	return nil
}
