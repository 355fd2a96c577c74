package agency

// StarterAssets is the default road registry for a fresh agency.
func StarterAssets() []Asset {
	return []Asset{
		{ID: 1, Name: "I-35", Start: [2]float64{100, 100}, End: [2]float64{700, 100}, Length: 300, Lanes: 4, Condition: 80, TrafficVolume: 20000, Capacity: 25000},
		{ID: 2, Name: "US-290", Start: [2]float64{100, 200}, End: [2]float64{700, 200}, Length: 250, Lanes: 3, Condition: 70, TrafficVolume: 15000, Capacity: 20000},
		{ID: 3, Name: "Loop 1604", Start: [2]float64{100, 300}, End: [2]float64{700, 300}, Length: 150, Lanes: 2, Condition: 60, TrafficVolume: 10000, Capacity: 15000},
	}
}

// StarterContractors is the default contractor pool.
func StarterContractors() []Contractor {
	return []Contractor{
		{ID: 1, Name: "TexBuild Co.", Expertise: []string{"Road", "Bridge"}, Rating: 4.5},
		{ID: 2, Name: "LoneStar Construction", Expertise: []string{"Tunnel", "Road"}, Rating: 4.0},
		{ID: 3, Name: "RoadMasters", Expertise: []string{"Road"}, Rating: 3.8},
	}
}
