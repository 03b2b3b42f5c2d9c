// Copyright (c) 2025 by Marko Gaćeša.
// Licensed under the Apache License, Version 2.0.
// See the LICENSE file or http://www.apache.org/licenses/LICENSE-2.0 for details.

package client

import (
	"fmt"

	"github.com/marko-gacesa/netquake/netquake"
	"github.com/marko-gacesa/netquake/netquake/message"
	clientmessage "github.com/marko-gacesa/netquake/netquake/message/client"
	servermessage "github.com/marko-gacesa/netquake/netquake/message/server"
)

// Sign-on stages announced by the server with the sign-on command.
const (
	SignOnPrespawn = 1
	SignOnSpawn    = 2
	SignOnBegin    = 3
	SignOnDone     = 4
)

// dispatch applies a command. Every command type is listed, the ones without driver state
// are forwarded to the command handler.
func (d *Driver) dispatch(cmd servermessage.Command) error {
	switch c := cmd.(type) {
	case *servermessage.NoOp:
		return nil
	case *servermessage.Disconnect:
		return netquake.ErrServerDisconnected
	case *servermessage.UpdateStat:
		d.stats[c.Stat] = c.Value
		return nil
	case *servermessage.Version:
		if c.Version != netquake.ProtocolVersion {
			return &netquake.ProtocolMismatchError{Got: c.Version, Want: netquake.ProtocolVersion}
		}
		return nil
	case *servermessage.SetView:
		d.viewEntity = c.Entity
		return nil
	case *servermessage.Time:
		d.time = c.Time
		return nil
	case *servermessage.Print:
		d.console.Print(c.Text)
		return nil
	case *servermessage.StuffText:
		if d.handler == nil {
			d.console.Print(c.Text)
			return nil
		}
		return d.handler.HandleCommand(c)
	case *servermessage.SetAngle:
		d.viewAngles = c.Angles
		return nil
	case *servermessage.ServerInfo:
		return d.applyServerInfo(c)
	case *servermessage.LightStyle:
		if c.ID >= MaxLightStyles {
			return &netquake.ProtocolViolationError{Msg: fmt.Sprintf("light style %d out of range", c.ID)}
		}
		d.lightStyles[c.ID] = c.Value
		return nil
	case *servermessage.UpdateName:
		p, err := d.scoreboardEntry(c.Player)
		if err != nil {
			return err
		}
		p.Name = c.Name
		return nil
	case *servermessage.UpdateFrags:
		p, err := d.scoreboardEntry(c.Player)
		if err != nil {
			return err
		}
		p.Frags = c.Frags
		return nil
	case *servermessage.UpdateColors:
		p, err := d.scoreboardEntry(c.Player)
		if err != nil {
			return err
		}
		p.Colors = c.Colors
		return nil
	case *servermessage.ClientData:
		d.applyClientData(c)
		return d.handle(c)
	case *servermessage.SetPause:
		d.paused = c.Paused
		return nil
	case *servermessage.SignOnNum:
		return d.applySignOn(c.Stage)
	case *servermessage.KilledMonster:
		d.stats[servermessage.StatKilledMonsters]++
		return nil
	case *servermessage.FoundSecret:
		d.stats[servermessage.StatFoundSecrets]++
		return nil
	case *servermessage.CdTrack:
		d.cdTrack, d.cdLoop = c.Track, c.Loop
		return nil
	case *servermessage.Sound,
		*servermessage.StopSound,
		*servermessage.Particle,
		*servermessage.Damage,
		*servermessage.SpawnStatic,
		*servermessage.SpawnBaseline,
		*servermessage.TempEntity,
		*servermessage.CenterPrint,
		*servermessage.SpawnStaticSound,
		*servermessage.Intermission,
		*servermessage.Finale,
		*servermessage.SellScreen,
		*servermessage.Cutscene,
		*servermessage.EntityUpdate:
		return d.handle(c)
	}

	return fmt.Errorf("client: unhandled command %s", cmd.Code())
}

func (d *Driver) handle(cmd servermessage.Command) error {
	if d.handler == nil {
		return nil
	}
	return d.handler.HandleCommand(cmd)
}

func (d *Driver) applyServerInfo(c *servermessage.ServerInfo) error {
	if c.ProtocolVersion != netquake.ProtocolVersion {
		return &netquake.ProtocolMismatchError{Got: c.ProtocolVersion, Want: netquake.ProtocolVersion}
	}

	// a new level starts, nothing of the previous one is valid
	d.serverInfo = nil
	d.models = nil
	d.sounds = nil
	d.stats = [servermessage.MaxStats]int32{}
	d.items = 0
	d.player = PlayerState{ViewHeight: DefaultViewHeight}
	d.lightStyles = [MaxLightStyles]string{}
	d.scoreboard = make([]Player, c.MaxClients)
	d.signOn = 0
	d.paused = false

	d.console.Print(c.Message)

	if err := d.loadPrecache(c); err != nil {
		return err
	}

	info := c.Info()
	d.serverInfo = &info

	d.log.Info("server info",
		"level", c.Message,
		"maxClients", c.MaxClients,
		"gameType", c.GameType.String(),
		"models", len(d.models)-1,
		"sounds", len(d.sounds)-1)

	return nil
}

func (d *Driver) scoreboardEntry(player byte) (*Player, error) {
	if int(player) >= len(d.scoreboard) {
		return nil, &netquake.ProtocolViolationError{
			Msg: fmt.Sprintf("player %d out of range, max clients %d", player, len(d.scoreboard)),
		}
	}
	return &d.scoreboard[player], nil
}

func (d *Driver) applyClientData(c *servermessage.ClientData) {
	d.player.ViewHeight = DefaultViewHeight
	if c.ViewHeight != nil {
		d.player.ViewHeight = *c.ViewHeight
	}

	d.player.IdealPitch = 0
	if c.IdealPitch != nil {
		d.player.IdealPitch = *c.IdealPitch
	}

	d.player.PunchAngle = message.Vec3{
		optionalFloat(c.PunchPitch),
		optionalFloat(c.PunchYaw),
		optionalFloat(c.PunchRoll),
	}

	d.player.Velocity = message.Vec3{
		optionalValue(c.VelocityX),
		optionalValue(c.VelocityY),
		optionalValue(c.VelocityZ),
	}

	d.player.OnGround = c.OnGround
	d.player.InWater = c.InWater

	d.items = c.Items

	d.stats[servermessage.StatWeaponFrame] = int32(optionalValue(c.WeaponFrame))
	d.stats[servermessage.StatArmor] = int32(optionalValue(c.Armor))
	d.stats[servermessage.StatWeapon] = int32(optionalValue(c.Weapon))
	d.stats[servermessage.StatHealth] = int32(c.Health)
	d.stats[servermessage.StatAmmo] = int32(c.Ammo)
	d.stats[servermessage.StatShells] = int32(c.Shells)
	d.stats[servermessage.StatNails] = int32(c.Nails)
	d.stats[servermessage.StatRockets] = int32(c.Rockets)
	d.stats[servermessage.StatCells] = int32(c.Cells)
	d.stats[servermessage.StatActiveWeapon] = int32(c.ActiveItem)
}

func optionalValue[T any](v *T) T {
	if v == nil {
		var zero T
		return zero
	}
	return *v
}

func optionalFloat(v *int8) float32 {
	return float32(optionalValue(v))
}

// applySignOn advances the sign-on and answers the server the way it expects for each stage.
func (d *Driver) applySignOn(stage byte) error {
	if stage <= d.signOn || stage > SignOnDone {
		return &netquake.ProtocolViolationError{Msg: fmt.Sprintf("sign-on stage %d after %d", stage, d.signOn)}
	}

	d.signOn = stage

	d.log.Debug("sign-on", "stage", stage)

	switch stage {
	case SignOnPrespawn:
		return d.SendCommands(&clientmessage.StringCmd{Text: "prespawn"})
	case SignOnSpawn:
		return d.SendCommands(
			&clientmessage.StringCmd{Text: fmt.Sprintf("name \"%s\"\n", d.playerName)},
			&clientmessage.StringCmd{Text: fmt.Sprintf("color %d %d\n", d.playerColors>>4, d.playerColors&0x0F)},
			&clientmessage.StringCmd{Text: "spawn "},
		)
	case SignOnBegin:
		return d.SendCommands(&clientmessage.StringCmd{Text: "begin"})
	}

	return nil
}
