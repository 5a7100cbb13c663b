package recs

import "mediapick/recservice/internal/domain"

// Catalog holds the static fallback lists served when a catalog source is
// unreachable. Fallback items use the same shape as live items, so the panel
// never goes empty on a transient outage.
type Catalog struct {
	global   map[domain.ContentType][]domain.MediaItem
	regional map[domain.ContentType][]domain.MediaItem
}

// Items returns a copy of the fallback list for a content type, preferring
// the regional variant when asked and available.
func (c Catalog) Items(contentType domain.ContentType, regional bool) []domain.MediaItem {
	var items []domain.MediaItem
	if regional {
		items = c.regional[contentType]
	}
	if len(items) == 0 {
		items = c.global[contentType]
	}
	out := make([]domain.MediaItem, len(items))
	copy(out, items)
	return out
}

func DefaultCatalog() Catalog {
	return Catalog{
		global: map[domain.ContentType][]domain.MediaItem{
			domain.ContentTypeMovie: {
				{
					ID:          "299536",
					Title:       "Avengers: Infinity War",
					Description: "The Avengers and their allies must be willing to sacrifice all in an attempt to defeat the powerful Thanos.",
					CoverImage:  "https://image.tmdb.org/t/p/w500/7WsyChQLEftFiDOVTGkv3hFpyyt.jpg",
					Rating:      4.2,
					Year:        2018,
					Genres:      []string{"Action", "Adventure", "Sci-Fi"},
					Type:        domain.ContentTypeMovie,
				},
				{
					ID:          "299534",
					Title:       "Avengers: Endgame",
					Description: "After the devastating events of Infinity War, the universe is in ruins. With the help of remaining allies, the Avengers assemble once more.",
					CoverImage:  "https://image.tmdb.org/t/p/w500/or06FN3Dka5tukK1e9sl16pB3iy.jpg",
					Rating:      4.3,
					Year:        2019,
					Genres:      []string{"Action", "Adventure", "Sci-Fi"},
					Type:        domain.ContentTypeMovie,
				},
				{
					ID:          "361743",
					Title:       "Top Gun: Maverick",
					Description: "After more than thirty years of service as a top naval aviator, Pete Mitchell is where he belongs, pushing the envelope as a courageous test pilot.",
					CoverImage:  "https://image.tmdb.org/t/p/w500/62HCnUTziyWcpDaBO2i1DX17ljH.jpg",
					Rating:      4.3,
					Year:        2022,
					Genres:      []string{"Action", "Drama"},
					Type:        domain.ContentTypeMovie,
				},
			},
			domain.ContentTypeSeries: {
				{
					ID:          "1399",
					Title:       "Game of Thrones",
					Description: "Nine noble families fight for control over the lands of Westeros, while an ancient enemy returns.",
					CoverImage:  "https://image.tmdb.org/t/p/w500/u3bZgnGQ9T01sWNhyveQz0wH0Hl.jpg",
					Rating:      4.4,
					Year:        2011,
					Genres:      []string{"Drama", "Fantasy", "Adventure"},
					Type:        domain.ContentTypeSeries,
				},
				{
					ID:          "66732",
					Title:       "Stranger Things",
					Description: "When a young boy disappears, his mother, a police chief, and his friends must confront terrifying forces in order to get him back.",
					CoverImage:  "https://image.tmdb.org/t/p/w500/x2LSRK2Cm7MZhjluni1msVJ3wDF.jpg",
					Rating:      4.3,
					Year:        2016,
					Genres:      []string{"Drama", "Fantasy", "Horror", "Mystery", "Sci-Fi"},
					Type:        domain.ContentTypeSeries,
				},
				{
					ID:          "88040",
					Title:       "Sacred Games",
					Description: "A link in their pasts leads an honest cop to a fugitive gang boss, whose cryptic warning spurs the officer on a quest to save Mumbai from cataclysm.",
					CoverImage:  "https://image.tmdb.org/t/p/w500/AvspCRQXEJXCMdFxBk9SQxBuL1p.jpg",
					Rating:      4.2,
					Year:        2018,
					Genres:      []string{"Crime", "Drama", "Thriller"},
					Type:        domain.ContentTypeSeries,
					Regional:    true,
				},
			},
			domain.ContentTypeBook: {
				{
					ID:          "book-harry-potter",
					Title:       "The Harry Potter Series",
					Description: "The novels chronicle the lives of a young wizard, Harry Potter, and his friends Hermione Granger and Ron Weasley, all of whom are students at Hogwarts School of Witchcraft and Wizardry.",
					CoverImage:  "https://books.google.com/books/content?id=f280CwAAQBAJ&printsec=frontcover&img=1&zoom=1&edge=curl&source=gbs_api",
					Rating:      4.8,
					Year:        1997,
					Author:      "J.K. Rowling",
					Genres:      []string{"Fantasy", "Fiction", "Young Adult"},
					Type:        domain.ContentTypeBook,
				},
				{
					ID:          "book-lotr",
					Title:       "The Lord of the Rings",
					Description: "The Lord of the Rings is an epic high-fantasy novel by English author and scholar J. R. R. Tolkien.",
					CoverImage:  "https://books.google.com/books/content?id=yl4dILkcqm4C&printsec=frontcover&img=1&zoom=1&edge=curl&source=gbs_api",
					Rating:      4.7,
					Year:        1954,
					Author:      "J.R.R. Tolkien",
					Genres:      []string{"Fantasy", "Fiction", "Adventure"},
					Type:        domain.ContentTypeBook,
				},
				{
					ID:          "book-da-vinci-code",
					Title:       "The Da Vinci Code",
					Description: "A murder in Paris's Louvre Museum and cryptic clues in some of Leonardo da Vinci's most famous paintings lead to the discovery of a religious mystery.",
					CoverImage:  "https://books.google.com/books/content?id=ivzfRJGrdFsC&printsec=frontcover&img=1&zoom=1&edge=curl&source=gbs_api",
					Rating:      4.3,
					Year:        2003,
					Author:      "Dan Brown",
					Genres:      []string{"Mystery", "Thriller", "Fiction"},
					Type:        domain.ContentTypeBook,
				},
			},
			domain.ContentTypeAnime: {
				{
					ID:          "16498",
					Title:       "Attack on Titan",
					Description: "After his hometown is destroyed and his mother is killed, young Eren Jaeger vows to cleanse the earth of the giant humanoid Titans that have brought humanity to the brink of extinction.",
					CoverImage:  domain.PlaceholderCoverImage,
					Rating:      4.5,
					Year:        2013,
					Genres:      []string{"Action", "Drama", "Fantasy"},
					Type:        domain.ContentTypeAnime,
					Episodes:    75,
				},
				{
					ID:          "5114",
					Title:       "Fullmetal Alchemist: Brotherhood",
					Description: "Two brothers search for a Philosopher's Stone after an attempt to revive their deceased mother goes wrong, leaving them in damaged physical forms.",
					CoverImage:  domain.PlaceholderCoverImage,
					Rating:      4.55,
					Year:        2009,
					Genres:      []string{"Action", "Adventure", "Drama", "Fantasy"},
					Type:        domain.ContentTypeAnime,
					Episodes:    64,
				},
				{
					ID:          "1535",
					Title:       "Death Note",
					Description: "An intelligent high school student goes on a secret crusade to eliminate criminals from the world after discovering a notebook capable of killing anyone whose name is written into it.",
					CoverImage:  domain.PlaceholderCoverImage,
					Rating:      4.3,
					Year:        2006,
					Genres:      []string{"Mystery", "Psychological", "Supernatural", "Thriller"},
					Type:        domain.ContentTypeAnime,
					Episodes:    37,
				},
			},
		},
		regional: map[domain.ContentType][]domain.MediaItem{
			domain.ContentTypeMovie: {
				{
					ID:          "in-pathaan",
					Title:       "Pathaan",
					Description: "An Indian spy takes on the leader of a group of mercenaries who have nefarious plans to target his homeland.",
					CoverImage:  domain.PlaceholderCoverImage,
					Rating:      3.6,
					Year:        2023,
					Genres:      []string{"Action", "Thriller"},
					Type:        domain.ContentTypeMovie,
					Director:    "Siddharth Anand",
					Regional:    true,
				},
				{
					ID:          "in-rrr",
					Title:       "RRR",
					Description: "A fictional story about two Indian revolutionaries, Alluri Sitarama Raju and Komaram Bheem, and their fight against the British Raj.",
					CoverImage:  domain.PlaceholderCoverImage,
					Rating:      4.35,
					Year:        2022,
					Genres:      []string{"Action", "Drama", "Historical"},
					Type:        domain.ContentTypeMovie,
					Director:    "S.S. Rajamouli",
					Regional:    true,
				},
				{
					ID:          "in-3-idiots",
					Title:       "3 Idiots",
					Description: "Two friends search for their third companion, who was once an optimistic and successful student, and recall the lessons he taught them.",
					CoverImage:  domain.PlaceholderCoverImage,
					Rating:      4.2,
					Year:        2009,
					Genres:      []string{"Comedy", "Drama"},
					Type:        domain.ContentTypeMovie,
					Director:    "Rajkumar Hirani",
					Regional:    true,
				},
			},
			domain.ContentTypeSeries: {
				{
					ID:          "88040",
					Title:       "Sacred Games",
					Description: "A link in their pasts leads an honest cop to a fugitive gang boss, whose cryptic warning spurs the officer on a quest to save Mumbai from cataclysm.",
					CoverImage:  "https://image.tmdb.org/t/p/w500/AvspCRQXEJXCMdFxBk9SQxBuL1p.jpg",
					Rating:      4.2,
					Year:        2018,
					Genres:      []string{"Crime", "Drama", "Thriller"},
					Type:        domain.ContentTypeSeries,
					Regional:    true,
				},
			},
		},
	}
}
