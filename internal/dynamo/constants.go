package dynamo

// Physical constants in SI units.
const (
	SpeedOfLight   = 299792458.0    // [m/s]
	KBoltzmann     = 1.38064852e-23 // [J/K]
	ElectronCharge = 1.60217662e-19 // [C]
	ElectronMass   = 9.10938356e-31 // [kg]
	ArgonMass      = 6.63352088e-26 // [kg]
	ElectronVolt   = ElectronCharge // [J]
)
