package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"waterbarons/internal/catalog"
	"waterbarons/internal/engine"
	"waterbarons/internal/protocol"
)

// RemoteDecider asks connected players for every decision over the
// WebSocket. It runs on the table's game goroutine and blocks until the
// player answers, the decision times out, the player disconnects, or the
// table closes; the last three fall back to the engine's default.
type RemoteDecider struct {
	table   *Table
	actions []protocol.ActionInfo
	timeout time.Duration
	ctx     context.Context
}

func NewRemoteDecider(t *Table, actions []catalog.Action, timeout time.Duration) *RemoteDecider {
	infos := make([]protocol.ActionInfo, len(actions))
	for i, a := range actions {
		infos[i] = protocol.ActionInfo{ID: a.ID, Description: a.Description}
	}
	return &RemoteDecider{table: t, actions: infos, timeout: timeout, ctx: context.Background()}
}

func (d *RemoteDecider) DraftPick(p *engine.Player, options []engine.Whim, pick int) int {
	d.table.publish()
	d.table.prompt(p.ID, protocol.MustEnvelope(protocol.MsgDraftPrompt, protocol.DraftPrompt{Pick: pick, Options: options}))
	defer d.table.clearPrompt(p.ID)

	choice := -1
	d.await(p.ID, "draft pick", func(msg IncomingMessage) bool {
		if msg.Envelope.Type != protocol.MsgDraftPick {
			d.table.hub.sendError(msg.Client, "waiting for draft_pick")
			return false
		}
		var m protocol.DraftPickMsg
		if err := msg.Envelope.Decode(&m); err != nil {
			d.table.hub.sendError(msg.Client, err.Error())
			return false
		}
		if m.Index < -1 || m.Index >= len(options) {
			d.table.hub.sendError(msg.Client, fmt.Sprintf("pick must be between -1 and %d", len(options)-1))
			return false
		}
		choice = m.Index
		return true
	})
	return choice
}

func (d *RemoteDecider) ActionChoice(g *engine.Game, p *engine.Player, action int) {
	d.table.publish()
	d.table.prompt(p.ID, protocol.MustEnvelope(protocol.MsgActionPrompt, protocol.ActionPrompt{
		Action:  action,
		Of:      g.Rules().ActionsPerTurn,
		Actions: d.actions,
	}))
	defer d.table.clearPrompt(p.ID)

	d.await(p.ID, "action", func(msg IncomingMessage) bool {
		if msg.Envelope.Type == protocol.MsgEndAction {
			return true
		}
		err := applyAction(g, p.ID, msg.Envelope)
		result := protocol.ActionResult{Action: msg.Envelope.Type, OK: err == nil}
		if err != nil {
			result.Error = err.Error()
		}
		d.table.hub.send(msg.Client, protocol.MustEnvelope(protocol.MsgActionResult, result))
		return err == nil
	})
}

func (d *RemoteDecider) SalesChoice(p *engine.Player, batches []engine.WaterBatch, opps []engine.DemandOpportunity, levels map[engine.Track]int) []engine.Sale {
	if len(batches) == 0 {
		return nil
	}
	d.table.publish()
	d.table.prompt(p.ID, protocol.MustEnvelope(protocol.MsgSalesPrompt, protocol.SalesPrompt{
		Batches:       batches,
		Opportunities: opps,
		Levels:        levels,
	}))
	defer d.table.clearPrompt(p.ID)

	var sales []engine.Sale
	d.await(p.ID, "sales", func(msg IncomingMessage) bool {
		if msg.Envelope.Type != protocol.MsgSales {
			d.table.hub.sendError(msg.Client, "waiting for sales")
			return false
		}
		var m protocol.SalesMsg
		if err := msg.Envelope.Decode(&m); err != nil {
			d.table.hub.sendError(msg.Client, err.Error())
			return false
		}
		sales = m.Sales
		return true
	})
	return sales
}

// await feeds messages from playerID to handle until it returns true.
// Messages from other players are refused.
func (d *RemoteDecider) await(playerID, what string, handle func(IncomingMessage) bool) {
	var timeout <-chan time.Time
	if d.timeout > 0 {
		timer := time.NewTimer(d.timeout)
		defer timer.Stop()
		timeout = timer.C
	}
	for {
		select {
		case <-d.ctx.Done():
			return
		case <-timeout:
			slog.Info("decision timed out", "table", d.table.ID, "player", playerID, "decision", what)
			return
		case msg := <-d.table.replies:
			if msg.Envelope.Type == msgDisconnect {
				// a disconnect queued before the player came back is stale
				if msg.PlayerID == playerID && !d.table.hub.connected(playerID) {
					slog.Info("player left during decision", "table", d.table.ID, "player", playerID, "decision", what)
					return
				}
				continue
			}
			if msg.PlayerID != playerID {
				d.table.hub.sendError(msg.Client, engine.ErrNotYourTurn.Error())
				continue
			}
			if handle(msg) {
				return
			}
		}
	}
}
