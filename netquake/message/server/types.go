// Copyright (c) 2025 by Marko Gaćeša.
// Licensed under the Apache License, Version 2.0.
// See the LICENSE file or http://www.apache.org/licenses/LICENSE-2.0 for details.

package server

// Code is the wire discriminant of a server command.
type Code byte

const (
	CodeBad              Code = 0
	CodeNoOp             Code = 1
	CodeDisconnect       Code = 2
	CodeUpdateStat       Code = 3
	CodeVersion          Code = 4
	CodeSetView          Code = 5
	CodeSound            Code = 6
	CodeTime             Code = 7
	CodePrint            Code = 8
	CodeStuffText        Code = 9
	CodeSetAngle         Code = 10
	CodeServerInfo       Code = 11
	CodeLightStyle       Code = 12
	CodeUpdateName       Code = 13
	CodeUpdateFrags      Code = 14
	CodeClientData       Code = 15
	CodeStopSound        Code = 16
	CodeUpdateColors     Code = 17
	CodeParticle         Code = 18
	CodeDamage           Code = 19
	CodeSpawnStatic      Code = 20
	CodeSpawnBaseline    Code = 22
	CodeTempEntity       Code = 23
	CodeSetPause         Code = 24
	CodeSignOnNum        Code = 25
	CodeCenterPrint      Code = 26
	CodeKilledMonster    Code = 27
	CodeFoundSecret      Code = 28
	CodeSpawnStaticSound Code = 29
	CodeIntermission     Code = 30
	CodeFinale           Code = 31
	CodeCdTrack          Code = 32
	CodeSellScreen       Code = 33
	CodeCutscene         Code = 34

	// CodeEntityUpdate marks the fast entity update. Any code byte with the high bit set is
	// an entity update and its remaining bits are the low bits of the update flags.
	CodeEntityUpdate Code = 0x80
)

var codeNames = map[Code]string{
	CodeBad:              "bad",
	CodeNoOp:             "nop",
	CodeDisconnect:       "disconnect",
	CodeUpdateStat:       "updatestat",
	CodeVersion:          "version",
	CodeSetView:          "setview",
	CodeSound:            "sound",
	CodeTime:             "time",
	CodePrint:            "print",
	CodeStuffText:        "stufftext",
	CodeSetAngle:         "setangle",
	CodeServerInfo:       "serverinfo",
	CodeLightStyle:       "lightstyle",
	CodeUpdateName:       "updatename",
	CodeUpdateFrags:      "updatefrags",
	CodeClientData:       "clientdata",
	CodeStopSound:        "stopsound",
	CodeUpdateColors:     "updatecolors",
	CodeParticle:         "particle",
	CodeDamage:           "damage",
	CodeSpawnStatic:      "spawnstatic",
	CodeSpawnBaseline:    "spawnbaseline",
	CodeTempEntity:       "temp_entity",
	CodeSetPause:         "setpause",
	CodeSignOnNum:        "signonnum",
	CodeCenterPrint:      "centerprint",
	CodeKilledMonster:    "killedmonster",
	CodeFoundSecret:      "foundsecret",
	CodeSpawnStaticSound: "spawnstaticsound",
	CodeIntermission:     "intermission",
	CodeFinale:           "finale",
	CodeCdTrack:          "cdtrack",
	CodeSellScreen:       "sellscreen",
	CodeCutscene:         "cutscene",
	CodeEntityUpdate:     "entity_update",
}

func (c Code) String() string {
	if c&CodeEntityUpdate != 0 {
		return codeNames[CodeEntityUpdate]
	}
	if name, ok := codeNames[c]; ok {
		return name
	}
	return "unknown"
}

// Stat identifies a client statistic updated with UpdateStat.
type Stat byte

const (
	StatHealth Stat = iota
	StatFrags
	StatWeapon
	StatAmmo
	StatArmor
	StatWeaponFrame
	StatShells
	StatNails
	StatRockets
	StatCells
	StatActiveWeapon
	StatTotalSecrets
	StatTotalMonsters
	StatFoundSecrets
	StatKilledMonsters

	statCount
)

// MaxStats is the size of the client's stat table.
const MaxStats = 32

// TempEntityKind selects the layout of a TempEntity command.
type TempEntityKind byte

const (
	TempSpike TempEntityKind = iota
	TempSuperSpike
	TempGunshot
	TempExplosion
	TempTarExplosion
	TempLightning1
	TempLightning2
	TempWizSpike
	TempKnightSpike
	TempLightning3
	TempLavaSplash
	TempTeleport
	TempExplosion2
	TempBeam
)

// Sound command flags.
const (
	SoundVolume      = 1 << 0
	SoundAttenuation = 1 << 1
	SoundLooping     = 1 << 2

	soundFlagsValid = SoundVolume | SoundAttenuation | SoundLooping
)

// Client data flags. Bit 8 (aim entity) is reserved and never sent.
const (
	ClientViewHeight  = 1 << 0
	ClientIdealPitch  = 1 << 1
	ClientPunchPitch  = 1 << 2
	ClientPunchYaw    = 1 << 3
	ClientPunchRoll   = 1 << 4
	ClientVelocityX   = 1 << 5
	ClientVelocityY   = 1 << 6
	ClientVelocityZ   = 1 << 7
	ClientItems       = 1 << 9
	ClientOnGround    = 1 << 10
	ClientInWater     = 1 << 11
	ClientWeaponFrame = 1 << 12
	ClientArmor       = 1 << 13
	ClientWeapon      = 1 << 14

	clientFlagsValid = ClientViewHeight | ClientIdealPitch |
		ClientPunchPitch | ClientPunchYaw | ClientPunchRoll |
		ClientVelocityX | ClientVelocityY | ClientVelocityZ |
		ClientItems | ClientOnGround | ClientInWater |
		ClientWeaponFrame | ClientArmor | ClientWeapon
)

// Entity update flags. The low byte travels as the command code, so UpdateSignal is always set.
const (
	UpdateMoreBits   = 1 << 0
	UpdateOriginX    = 1 << 1
	UpdateOriginY    = 1 << 2
	UpdateOriginZ    = 1 << 3
	UpdateYaw        = 1 << 4
	UpdateNoLerp     = 1 << 5
	UpdateFrame      = 1 << 6
	UpdateSignal     = 1 << 7
	UpdatePitch      = 1 << 8
	UpdateRoll       = 1 << 9
	UpdateModel      = 1 << 10
	UpdateColormap   = 1 << 11
	UpdateSkin       = 1 << 12
	UpdateEffects    = 1 << 13
	UpdateLongEntity = 1 << 14

	updateFlagsValid = 1<<15 - 1
)
