package main

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort = "Synchronize a Steam Workshop mod collection"
	MsgRootLong = `modsync keeps a local collection of workshop mods in sync with the Steam
catalog and with portable manifest files, driving steamcmd to do the actual
downloading.`
	MsgInitShort    = "Install (or reinstall) the steamcmd helper"
	MsgImportShort  = "Download whatever a manifest lists that differs locally"
	MsgExportShort  = "Write a manifest of the local collection with checksums"
	MsgUpdateShort  = "Download newer versions of installed mods and their dependencies"
	MsgCleanupShort = "Purge steamcmd's workshop download cache"
	MsgVersionShort = "Print version information"

	// Flag descriptions
	MsgFlagVerbose    = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagYes        = "Skip the confirmation prompt"
	MsgFlagSkipVerify = "Skip checksum verification after downloading"
)
