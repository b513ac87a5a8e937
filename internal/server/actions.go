package server

import (
	"fmt"

	"waterbarons/internal/engine"
	"waterbarons/internal/protocol"
)

var upgradeTargets = map[string]engine.TargetKind{
	"facility": engine.TargetFacility,
	"route":    engine.TargetRoute,
	"tech":     engine.TargetTech,
}

// applyAction decodes one action message and runs it against g. Slots on
// the wire are 0-based.
func applyAction(g *engine.Game, playerID string, env protocol.Envelope) error {
	switch env.Type {
	case protocol.MsgBuildFacility, protocol.MsgBuildDistribution:
		var m protocol.BuildMsg
		if err := env.Decode(&m); err != nil {
			return err
		}
		if env.Type == protocol.MsgBuildFacility {
			return g.BuildFacility(playerID, m.CardID, m.Slot)
		}
		return g.BuildDistribution(playerID, m.CardID, m.Slot)

	case protocol.MsgProduceWater:
		var m protocol.ProduceMsg
		if err := env.Decode(&m); err != nil {
			return err
		}
		return g.ProduceWater(playerID, m.Slot)

	case protocol.MsgAddUpgrade:
		var m protocol.UpgradeMsg
		if err := env.Decode(&m); err != nil {
			return err
		}
		kind, ok := upgradeTargets[m.Target]
		if !ok {
			return fmt.Errorf("%w: %q", engine.ErrInvalidTarget, m.Target)
		}
		return g.AddUpgrade(playerID, m.CardID, engine.UpgradeTarget{Kind: kind, Slot: m.Slot})

	case protocol.MsgSpeculate:
		var m protocol.SpeculateMsg
		if err := env.Decode(&m); err != nil {
			return err
		}
		track, err := engine.ParseTrack(m.Track)
		if err != nil {
			return err
		}
		return g.Speculate(playerID, track, m.Long)

	case protocol.MsgBuyOption:
		var m protocol.OptionMsg
		if err := env.Decode(&m); err != nil {
			return err
		}
		return g.BuyEventOption(playerID, m.Event)

	case protocol.MsgSpinMarketing:
		var m protocol.MarketingMsg
		if err := env.Decode(&m); err != nil {
			return err
		}
		return g.SpinMarketing(playerID, m.Segment, m.Up)

	case protocol.MsgPass:
		return g.Pass(playerID)
	}
	return fmt.Errorf("unknown action %q", env.Type)
}
