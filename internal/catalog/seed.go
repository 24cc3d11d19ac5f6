package catalog

import "github.com/sakif/robotics-league/internal/model"

// The league's curated reference data. Values are authored by the league
// office; edit them here, not in code that reads them.

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

func seedTeams() []model.Team {
	return []model.Team{
		{
			ID:       1,
			Name:     "RoboTitans",
			Location: "Saltillo, Coahuila",
			Founded:  2018,
			Logo:     "/images/teams/robotitans.png",
			Members: []model.Member{
				{Name: "Carlos Mendoza", Avatar: "/images/members/carlos.jpg"},
				{Name: "Lucía Herrera", Avatar: "/images/members/lucia.jpg"},
				{Name: "Diego Ramírez", Avatar: "/images/members/diego.jpg"},
				{Name: "Valeria Torres", Avatar: "/images/members/valeria.jpg"},
			},
			Achievements: []model.Achievement{
				{Title: "Campeones Regionales", Date: "Noviembre 2024", Description: "Primer lugar en el Torneo Regional del Norte."},
				{Title: "Premio a la Innovación", Date: "Marzo 2024", Description: "Reconocimiento por su sistema de visión artificial."},
			},
			Stats:   model.TeamStats{Wins: 24, Losses: 3, Draws: 1, RankingPoints: 2450},
			Wins:    24,
			Losses:  3,
			Ranking: 1,
		},
		{
			ID:       2,
			Name:     "MechaWolves",
			Location: "Monterrey, Nuevo León",
			Founded:  2017,
			Logo:     "/images/teams/mechawolves.png",
			Members: []model.Member{
				{Name: "Andrea Garza", Avatar: "/images/members/andrea.jpg"},
				{Name: "Sebastián Treviño", Avatar: "/images/members/sebastian.jpg"},
				{Name: "Mariana Salinas", Avatar: "/images/members/mariana.jpg"},
			},
			Achievements: []model.Achievement{
				{Title: "Subcampeones Nacionales", Date: "Mayo 2024", Description: "Segundo lugar en el Campeonato Nacional."},
			},
			Stats:   model.TeamStats{Wins: 21, Losses: 5, Draws: 2, RankingPoints: 2310},
			Wins:    21,
			Losses:  5,
			Ranking: 2,
		},
		{
			ID:       3,
			Name:     "Circuit Breakers",
			Location: "Torreón, Coahuila",
			Founded:  2019,
			Logo:     "/images/teams/circuit-breakers.png",
			Members: []model.Member{
				{Name: "Fernanda López", Avatar: "/images/members/fernanda.jpg"},
				{Name: "Emilio Castro", Avatar: "/images/members/emilio.jpg"},
				{Name: "Renata Flores", Avatar: "/images/members/renata.jpg"},
				{Name: "Iván Morales", Avatar: "/images/members/ivan.jpg"},
			},
			Achievements: []model.Achievement{
				{Title: "Mejor Diseño Mecánico", Date: "Octubre 2024", Description: "Premio al chasis más robusto de la temporada."},
			},
			Stats:   model.TeamStats{Wins: 19, Losses: 6, Draws: 3, RankingPoints: 2105},
			Wins:    19,
			Losses:  6,
			Ranking: 3,
		},
		{
			ID:       4,
			Name:     "Steel Falcons",
			Location: "Ramos Arizpe, Coahuila",
			Founded:  2020,
			Logo:     "/images/teams/steel-falcons.png",
			Members: []model.Member{
				{Name: "Paola Vázquez", Avatar: "/images/members/paola.jpg"},
				{Name: "Ricardo Núñez", Avatar: "/images/members/ricardo.jpg"},
				{Name: "Ximena Ortiz", Avatar: "/images/members/ximena.jpg"},
			},
			Achievements: []model.Achievement{
				{Title: "Espíritu Deportivo", Date: "Junio 2024", Description: "Reconocidos por apoyar a equipos novatos."},
			},
			Stats:   model.TeamStats{Wins: 17, Losses: 8, Draws: 1, RankingPoints: 1980},
			Wins:    17,
			Losses:  8,
			Ranking: 4,
		},
		{
			ID:       5,
			Name:     "Nova Bots",
			Location: "Monclova, Coahuila",
			Founded:  2021,
			Logo:     "/images/teams/nova-bots.png",
			Members: []model.Member{
				{Name: "Santiago Ríos", Avatar: "/images/members/santiago.jpg"},
				{Name: "Camila Reyes", Avatar: "/images/members/camila.jpg"},
			},
			Achievements: []model.Achievement{
				{Title: "Novatos del Año", Date: "Diciembre 2023", Description: "Mejor equipo de primer año de la liga."},
			},
			Stats:   model.TeamStats{Wins: 14, Losses: 10, Draws: 2, RankingPoints: 1725},
			Wins:    14,
			Losses:  10,
			Ranking: 5,
		},
		{
			ID:       6,
			Name:     "Desert Gears",
			Location: "Chihuahua, Chihuahua",
			Founded:  2016,
			Logo:     "/images/teams/desert-gears.png",
			Members: []model.Member{
				{Name: "Alejandro Chávez", Avatar: "/images/members/alejandro.jpg"},
				{Name: "Daniela Medina", Avatar: "/images/members/daniela.jpg"},
				{Name: "Jorge Aguilar", Avatar: "/images/members/jorge.jpg"},
			},
			Achievements: []model.Achievement{
				{Title: "Salón de la Fama", Date: "Agosto 2022", Description: "Tricampeones de la liga entre 2019 y 2021."},
			},
			Stats:   model.TeamStats{Wins: 12, Losses: 11, Draws: 4, RankingPoints: 1560},
			Wins:    12,
			Losses:  11,
			Ranking: 6,
		},
		{
			ID:       7,
			Name:     "Byte Knights",
			Location: "Saltillo, Coahuila",
			Founded:  2022,
			Logo:     "/images/teams/byte-knights.png",
			Members: []model.Member{
				{Name: "Natalia Cruz", Avatar: "/images/members/natalia.jpg"},
				{Name: "Mateo Jiménez", Avatar: "/images/members/mateo.jpg"},
				{Name: "Sofía Domínguez", Avatar: "/images/members/sofia.jpg"},
			},
			Achievements: []model.Achievement{},
			Stats:        model.TeamStats{Wins: 9, Losses: 13, Draws: 2, RankingPoints: 1320},
			Wins:         9,
			Losses:       13,
			Ranking:      7,
		},
		{
			ID:       8,
			Name:     "Volt Vipers",
			Location: "Piedras Negras, Coahuila",
			Founded:  2023,
			Logo:     "/images/teams/volt-vipers.png",
			Members: []model.Member{
				{Name: "Gael Romero", Avatar: "/images/members/gael.jpg"},
				{Name: "Regina Peña", Avatar: "/images/members/regina.jpg"},
			},
			Achievements: []model.Achievement{},
			Stats:        model.TeamStats{Wins: 6, Losses: 16, Draws: 1, RankingPoints: 1045},
			Wins:         6,
			Losses:       16,
			Ranking:      8,
		},
	}
}

func seedTournaments() []model.Tournament {
	return []model.Tournament{
		{
			ID:           1,
			Name:         "Torneo Regional del Norte",
			Date:         "15 de noviembre, 2024",
			Location:     "Saltillo, Coahuila",
			Participants: 32,
			Status:       model.TournamentCompleted,
			Image:        "/images/tournaments/regional-norte.jpg",
			Winner:       strPtr("RoboTitans"),
			Description:  strPtr("Competencia regional con equipos de Coahuila, Nuevo León y Chihuahua."),
			Teams:        intPtr(16),
		},
		{
			ID:           2,
			Name:         "Copa Acero",
			Date:         "8 de febrero, 2025",
			Location:     "Monterrey, Nuevo León",
			Participants: 24,
			Status:       model.TournamentCompleted,
			Image:        "/images/tournaments/copa-acero.jpg",
			Winner:       strPtr("MechaWolves"),
			Teams:        intPtr(12),
		},
		{
			ID:           3,
			Name:         "Desafío Estudiantil de Robótica",
			Date:         "22 de marzo, 2025",
			Location:     "Torreón, Coahuila",
			Participants: 40,
			Status:       model.TournamentOngoing,
			Image:        "/images/tournaments/desafio-estudiantil.jpg",
			Description:  strPtr("Eliminatorias por grupos para equipos de preparatoria."),
			Teams:        intPtr(20),
		},
		{
			ID:           4,
			Name:         "Campeonato Nacional",
			Date:         "17 de mayo, 2025",
			Location:     "Ciudad de México",
			Participants: 64,
			Status:       model.TournamentUpcoming,
			Image:        "/images/tournaments/nacional.jpg",
			Description:  strPtr("Los mejores 32 equipos del país compiten por el título nacional."),
			Teams:        intPtr(32),
		},
		{
			ID:           5,
			Name:         "Copa Novatos",
			Date:         "TBD",
			Location:     "Monclova, Coahuila",
			Participants: 16,
			Status:       model.TournamentUpcoming,
			Image:        "/images/tournaments/copa-novatos.jpg",
			Description:  strPtr("Torneo exclusivo para equipos en su primera temporada."),
		},
		{
			ID:           6,
			Name:         "Exhibición de Verano",
			Date:         "TBD",
			Location:     "Ramos Arizpe, Coahuila",
			Participants: 20,
			Status:       model.TournamentUpcoming,
			Image:        "/images/tournaments/exhibicion-verano.jpg",
		},
	}
}
