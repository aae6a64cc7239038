package resolve

// DefaultStaticAliases is the hand-curated alias table. Keys are
// canonical names, values the alternate names the community uses for
// the same group. Entries here always win over dynamically registered
// aliases and are never overwritten by ingested data.
var DefaultStaticAliases = map[string][]string{
	"APT28":         {"Fancy Bear", "Sofacy", "Pawn Storm", "Forest Blizzard", "Strontium"},
	"APT29":         {"Cozy Bear", "The Dukes", "Nobelium", "Midnight Blizzard"},
	"APT33":         {"Elfin", "Refined Kitten", "Peach Sandstorm"},
	"APT41":         {"Wicked Panda", "Barium", "Double Dragon"},
	"FIN7":          {"Carbanak Group", "Carbon Spider", "Sangria Tempest"},
	"TA505":         {"Hive0065", "Spandex Tempest"},
	"Lazarus Group": {"Hidden Cobra", "Diamond Sleet", "Zinc"},
	"Sandworm Team": {"Voodoo Bear", "Iridium", "Seashell Blizzard"},
	"Turla":         {"Snake", "Venomous Bear", "Waterbug", "Secret Blizzard"},
	"Kimsuky":       {"Velvet Chollima", "Thallium", "Emerald Sleet"},
	"MuddyWater":    {"Static Kitten", "Mercury", "Mango Sandstorm"},
	"OilRig":        {"APT34", "Helix Kitten", "Hazel Sandstorm"},
}
