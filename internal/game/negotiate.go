package game

import (
	"context"
	"fmt"

	"github.com/talgya/catan-table/internal/action"
	"github.com/talgya/catan-table/internal/negotiation"
	"github.com/talgya/catan-table/internal/resource"
	"github.com/talgya/catan-table/internal/seat"
	"github.com/talgya/catan-table/internal/snapshot"
)

// proposeTrade opens a negotiation session and drives it until a
// terminal state or the action cap. Resources only move on acceptance,
// and only after both sides are re-checked for affordability.
func (c *Controller) proposeTrade(ctx context.Context, proposer *seat.Seat, a *action.ProposeTrade) string {
	partner := c.seatByName(a.Partner)
	if partner == nil {
		return fmt.Sprintf("error_unknown_player: no player named %q", a.Partner)
	}
	if partner.ID == proposer.ID {
		return "error_invalid_input: cannot trade with yourself"
	}
	offered, err := a.Offered.Normalize()
	if err != nil {
		return fmt.Sprintf("error_invalid_input: resources_offered: %v", err)
	}
	requested, err := a.Requested.Normalize()
	if err != nil {
		return fmt.Sprintf("error_invalid_input: resources_requested: %v", err)
	}
	if offered.Total() == 0 && requested.Total() == 0 {
		return "error_invalid_input: a trade must offer or request something"
	}
	if !proposer.Resources.Contains(offered) {
		return fmt.Sprintf("error_insufficient_resources: you cannot cover your own offer, missing %s", proposer.Resources.Missing(offered))
	}

	sess := negotiation.NewSession(c.turn)
	if err := sess.Start(proposer.Name, partner.Name, offered, requested, c.turn); err != nil {
		return fmt.Sprintf("error_rule_violation: %v", err)
	}
	c.session = sess
	defer func() { c.session = nil }()

	c.emit(Event{Turn: c.turn, Seat: proposer.Name, Kind: EventNegotiation,
		Detail: fmt.Sprintf("proposed to %s: give %s for %s", partner.Name, offered, requested)})

	c.runNegotiation(ctx, proposer, partner)

	switch sess.State() {
	case negotiation.StateAccepted:
		return fmt.Sprintf("success_trade_executed: trade with %s completed", partner.Name)
	case negotiation.StateRejected:
		return fmt.Sprintf("info_trade_rejected: %s rejected the trade", partner.Name)
	case negotiation.StateEndedByPlayer:
		return "info_negotiation_ended: a player walked away from the negotiation"
	default:
		return "info_negotiation_ended: the negotiation was closed by the table"
	}
}

// runNegotiation alternates decisions between the two participants
// until the session goes terminal or the per-session action cap trips.
func (c *Controller) runNegotiation(ctx context.Context, proposer, partner *seat.Seat) {
	sess := c.session
	for step := 0; step < c.policy.NegotiationCap && sess.Active(); step++ {
		active := partner
		if sess.ActiveNegotiator() == proposer.Name {
			active = proposer
		}
		other := proposer
		if active == proposer {
			other = partner
		}

		st := c.state(active, snapshot.PhaseNegotiation)
		d, err := c.decide(ctx, active, st)
		if err != nil {
			sess.EndBySystem(fmt.Sprintf("%s failed to respond (%v)", active.Name, err), c.turn)
			active.SetFeedback(fmt.Sprintf("error_agent_failure: negotiation ended, %v", err))
			return
		}

		switch na := d.Action.(type) {
		case *action.AcceptTrade:
			c.settleTrade(active, other)
		case *action.RejectTrade:
			reason := na.Reason
			if reason == "" {
				reason = "no reason given"
			}
			if err := sess.Reject(active.Name, reason, c.turn); err != nil {
				sess.EndBySystem(err.Error(), c.turn)
			}
			active.SetFeedback("success: you rejected the trade")
			other.SetFeedback(fmt.Sprintf("info_trade_rejected: %s rejected the trade (%s)", active.Name, reason))
			c.emit(Event{Turn: c.turn, Seat: active.Name, Kind: EventNegotiation, Detail: "rejected the trade"})
		case *action.CounterOffer:
			c.counterOffer(active, other, na)
		case *action.EndNegotiation:
			reason := d.Thoughts
			if reason == "" {
				reason = "no reason given"
			}
			if err := sess.EndByPlayer(active.Name, reason, c.turn); err != nil {
				sess.EndBySystem(err.Error(), c.turn)
			}
			active.SetFeedback("success: you ended the negotiation")
			other.SetFeedback(fmt.Sprintf("info_negotiation_ended: %s walked away", active.Name))
			c.emit(Event{Turn: c.turn, Seat: active.Name, Kind: EventNegotiation, Detail: "ended the negotiation"})
		default:
			sess.EndBySystem(fmt.Sprintf("%s attempted %s during a negotiation", active.Name, d.Action.ActionType()), c.turn)
			active.SetFeedback(fmt.Sprintf("error_invalid_action_type: %s is not allowed mid-negotiation, the session was closed", d.Action.ActionType()))
		}
	}
	if sess.Active() {
		sess.EndBySystem("maximum negotiation actions reached", c.turn)
		proposer.SetFeedback("info_negotiation_ended: the negotiation ran too long and was closed")
	}
}

// settleTrade executes an acceptance. The standing offer reads from the
// last proposer's side, so the acceptor gives the requested bundle and
// receives the offered one. A side that can no longer afford its half
// converts the acceptance to a rejection.
func (c *Controller) settleTrade(acceptor, counterparty *seat.Seat) {
	sess := c.session
	offer, ok := sess.LastOffer()
	if !ok {
		sess.EndBySystem("acceptance with no standing offer", c.turn)
		return
	}
	if !counterparty.Resources.Contains(offer.Offered) {
		if err := sess.Reject(acceptor.Name, "proposer can no longer cover the offer", c.turn); err != nil {
			sess.EndBySystem(err.Error(), c.turn)
		}
		counterparty.SetFeedback(fmt.Sprintf("error_insufficient_resources: your offer of %s is no longer affordable, trade canceled", offer.Offered))
		return
	}
	if !acceptor.Resources.Contains(offer.Requested) {
		if err := sess.Reject(acceptor.Name, "acceptor cannot cover the requested resources", c.turn); err != nil {
			sess.EndBySystem(err.Error(), c.turn)
		}
		acceptor.SetFeedback(fmt.Sprintf("error_insufficient_resources: you cannot pay %s, trade canceled", offer.Requested))
		return
	}
	if _, err := sess.Accept(acceptor.Name, c.turn); err != nil {
		sess.EndBySystem(err.Error(), c.turn)
		return
	}
	if err := resource.Transfer(counterparty.Resources, acceptor.Resources, offer.Offered, offer.Requested); err != nil {
		// Both sides were just checked, so this only fires on a
		// bookkeeping bug. Close the session rather than move cards.
		sess.EndBySystem(fmt.Sprintf("transfer failed: %v", err), c.turn)
		c.log.Error("trade transfer failed after affordability check", "error", err)
		return
	}
	c.reputation.RewardTrade(acceptor.Name, counterparty.Name)
	detail := fmt.Sprintf("%s gave %s to %s for %s", counterparty.Name, offer.Offered, acceptor.Name, offer.Requested)
	acceptor.SetFeedback(fmt.Sprintf("success_trade_executed: you received %s for %s", offer.Offered, offer.Requested))
	counterparty.SetFeedback(fmt.Sprintf("success_trade_executed: %s accepted, you received %s for %s", acceptor.Name, offer.Requested, offer.Offered))
	acceptor.Remember(fmt.Sprintf("Turn %d: accepted a trade with %s (%s)", c.turn, counterparty.Name, detail))
	c.emit(Event{Turn: c.turn, Seat: acceptor.Name, Kind: EventTrade, Detail: detail})
}

func (c *Controller) counterOffer(from, to *seat.Seat, a *action.CounterOffer) {
	sess := c.session
	offered, err := a.Offered.Normalize()
	if err != nil {
		sess.EndBySystem(fmt.Sprintf("%s sent a malformed counter offer", from.Name), c.turn)
		from.SetFeedback(fmt.Sprintf("error_invalid_input: resources_offered: %v, negotiation closed", err))
		return
	}
	requested, err := a.Requested.Normalize()
	if err != nil {
		sess.EndBySystem(fmt.Sprintf("%s sent a malformed counter offer", from.Name), c.turn)
		from.SetFeedback(fmt.Sprintf("error_invalid_input: resources_requested: %v, negotiation closed", err))
		return
	}
	if !from.Resources.Contains(offered) {
		sess.EndBySystem(fmt.Sprintf("%s countered with resources they do not hold", from.Name), c.turn)
		from.SetFeedback(fmt.Sprintf("error_insufficient_resources: you cannot cover %s, negotiation closed", offered))
		return
	}
	if err := sess.Counter(from.Name, offered, requested, c.turn); err != nil {
		sess.EndBySystem(err.Error(), c.turn)
		from.SetFeedback(fmt.Sprintf("error_rule_violation: %v, negotiation closed", err))
		return
	}
	to.SetFeedback(fmt.Sprintf("info_counter_offer: %s now offers %s for %s", from.Name, offered, requested))
	c.emit(Event{Turn: c.turn, Seat: from.Name, Kind: EventNegotiation,
		Detail: fmt.Sprintf("countered: give %s for %s", offered, requested)})
}

// runPrivateChat opens a two-party conversation and alternates replies
// until one side closes it or the exchange cap trips.
func (c *Controller) runPrivateChat(ctx context.Context, initiator *seat.Seat, a *action.InitiatePrivate) string {
	partner := c.seatByName(a.Recipient)
	if partner == nil {
		return fmt.Sprintf("error_unknown_player: no player named %q", a.Recipient)
	}
	if partner.ID == initiator.ID {
		return "error_invalid_input: cannot open a private chat with yourself"
	}
	if a.Opening == "" {
		return "error_missing_input: initiate_private_chat needs an opening_message"
	}

	c.chatLog.Private(initiator.Name, partner.Name, a.Opening)
	c.emit(Event{Turn: c.turn, Seat: initiator.Name, Kind: EventChat,
		Detail: fmt.Sprintf("private chat with %s", partner.Name)})

	speaker, listener := partner, initiator
	for exchange := 0; exchange < c.policy.PrivateChatCap; exchange++ {
		st := c.state(speaker, snapshot.PhasePrivateChat, func(req *snapshot.Request) {
			req.ChatPartner = listener.Name
		})
		d, err := c.decide(ctx, speaker, st)
		if err != nil {
			speaker.SetFeedback(fmt.Sprintf("error_agent_failure: private chat ended, %v", err))
			break
		}
		switch pa := d.Action.(type) {
		case *action.PrivateMessage:
			if pa.Message == "" {
				speaker.SetFeedback("error_missing_input: empty private message, chat ended")
				return fmt.Sprintf("info_chat_ended: private chat with %s was closed", partner.Name)
			}
			c.chatLog.Private(speaker.Name, listener.Name, pa.Message)
		case *action.EndPrivateChat:
			speaker.SetFeedback("success: you closed the private chat")
			listener.SetFeedback(fmt.Sprintf("info_chat_ended: %s closed the private chat", speaker.Name))
			return fmt.Sprintf("success: private chat with %s finished", partner.Name)
		default:
			speaker.SetFeedback(fmt.Sprintf("error_invalid_action_type: only send_private_message or end_private_chat are allowed in a private chat, got %s", d.Action.ActionType()))
			return fmt.Sprintf("info_chat_ended: private chat with %s was closed", partner.Name)
		}
		speaker, listener = listener, speaker
	}
	return fmt.Sprintf("success: private chat with %s finished", partner.Name)
}
