// Command seed loads the starter curriculum: two published modules on the
// Indian Constitution with their chapter quizzes. Safe to re-run; modules
// are upserted and quizzes replaced.
package main

import (
	"context"
	"log"

	"github.com/constitution-quest/backend/internal/content"
	"github.com/constitution-quest/backend/internal/database"
	"github.com/constitution-quest/backend/internal/models"
)

func main() {
	db, err := database.Connect()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	store := content.NewStore(db)
	ctx := context.Background()

	for _, m := range seedModules() {
		if err := store.SaveModule(ctx, m); err != nil {
			log.Fatalf("Failed to save module %d: %v", m.ID, err)
		}
		log.Printf("Saved module %d: %s (%d chapters)", m.ID, m.Title, len(m.Chapters))
	}

	for _, q := range seedQuizzes() {
		if err := store.ReplaceQuiz(ctx, q.ModuleID, q.ChapterID, q.Questions); err != nil {
			log.Fatalf("Failed to save quiz for chapter %d/%d: %v", q.ModuleID, q.ChapterID, err)
		}
		log.Printf("Saved quiz for chapter %d/%d (%d questions)", q.ModuleID, q.ChapterID, len(q.Questions))
	}

	log.Println("Seeding complete")
}

func seedModules() []models.Module {
	return []models.Module{
		{
			ID:          1,
			Title:       "Introduction to the Indian Constitution",
			Description: "Learn about the history and making of the Indian Constitution",
			Status:      models.ModuleStatusPublished,
			Chapters: []models.Chapter{
				{
					ID:          1,
					ModuleID:    1,
					Title:       "Historical Background",
					Description: "The events leading to the creation of the Indian Constitution",
					Content: `<h2>Historical Context of the Indian Constitution</h2>
<p>The need for a constitution emerged during British colonial rule, which began formally in 1858 when the British Crown took over administration from the East India Company. Key acts of this period include the Government of India Act, 1858, the Indian Councils Acts of 1861, 1892, and 1909, and the Government of India Acts of 1919 and 1935.</p>
<p>The Indian National Congress, founded in 1885, drove constitutional development through milestones such as the Lucknow Pact (1916), the Nehru Report (1928), the Karachi Resolution (1931), and the Quit India Movement (1942).</p>
<p>In 1946, the Cabinet Mission Plan proposed a framework for the transfer of power and the formation of a Constituent Assembly, laying the groundwork for India's constitutional development after independence.</p>`,
					HasQuiz: true,
				},
				{
					ID:          2,
					ModuleID:    1,
					Title:       "Constituent Assembly",
					Description: "Formation and functioning of the Constituent Assembly",
					Content: `<h2>The Constituent Assembly of India</h2>
<p>The Constituent Assembly was formed under the Cabinet Mission Plan of 1946 to draft the Constitution of independent India. It initially had 389 members, reduced to 299 after partition, elected indirectly by provincial assemblies.</p>
<p>Dr. Rajendra Prasad served as President of the Assembly and Dr. B.R. Ambedkar chaired the Drafting Committee. Jawaharlal Nehru moved the Objectives Resolution, and Sardar Vallabhbhai Patel headed the Advisory Committee on Fundamental Rights and Minorities.</p>
<p>The Assembly first met on December 9, 1946, adopted the Constitution on November 26, 1949, and the Constitution came into effect on January 26, 1950.</p>`,
					HasQuiz: true,
				},
			},
		},
		{
			ID:          2,
			Title:       "Fundamental Rights",
			Description: "Explore the fundamental rights guaranteed by the Constitution",
			Status:      models.ModuleStatusPublished,
			Chapters: []models.Chapter{
				{
					ID:          1,
					ModuleID:    2,
					Title:       "Right to Equality",
					Description: "Articles 14-18 of the Indian Constitution",
					Content: `<h2>Right to Equality (Articles 14-18)</h2>
<p>Article 14 guarantees that the State shall not deny to any person equality before the law or the equal protection of the laws within the territory of India.</p>
<p>Article 15 prohibits discrimination on grounds of religion, race, caste, sex, or place of birth. Article 16 guarantees equality of opportunity in matters of public employment. Article 17 abolishes untouchability and forbids its practice in any form. Article 18 abolishes titles other than military or academic distinctions.</p>`,
					HasQuiz: true,
				},
				{
					ID:          2,
					ModuleID:    2,
					Title:       "Right to Freedom",
					Description: "Articles 19-22 of the Indian Constitution",
					Content: `<h2>Right to Freedom (Articles 19-22)</h2>
<p>Article 19 guarantees six freedoms to all citizens: speech and expression, peaceful assembly, association, movement, residence, and profession. These freedoms are subject to reasonable restrictions.</p>
<p>Article 20 protects against arbitrary conviction. Article 21 guarantees that no person shall be deprived of life or personal liberty except according to procedure established by law, and has been interpreted expansively by the Supreme Court. Article 22 provides safeguards against arbitrary arrest and detention.</p>`,
					HasQuiz: false,
				},
			},
		},
	}
}

func seedQuizzes() []models.Quiz {
	return []models.Quiz{
		{
			ModuleID:  1,
			ChapterID: 1,
			Title:     "Historical Background Quiz",
			Questions: []models.QuizQuestion{
				{
					Position: 1,
					Question: "Which of the following Acts is considered a major precursor to the Indian Constitution?",
					Options: []models.QuizOption{
						{ID: "a", Text: "Indian Independence Act, 1947"},
						{ID: "b", Text: "Government of India Act, 1935"},
						{ID: "c", Text: "Indian Councils Act, 1909"},
						{ID: "d", Text: "Regulating Act, 1773"},
					},
					CorrectOption: "b",
					Explanation:   "The Government of India Act, 1935 provided the framework for the Indian Constitution. Many provisions were directly incorporated from this Act.",
				},
				{
					Position: 2,
					Question: "When was the Cabinet Mission Plan proposed?",
					Options: []models.QuizOption{
						{ID: "a", Text: "1942"},
						{ID: "b", Text: "1944"},
						{ID: "c", Text: "1946"},
						{ID: "d", Text: "1947"},
					},
					CorrectOption: "c",
					Explanation:   "The Cabinet Mission Plan was proposed in 1946 to discuss the transfer of power and the formation of a Constituent Assembly.",
				},
				{
					Position: 3,
					Question: "Which of the following was NOT a source of inspiration for the Indian Constitution?",
					Options: []models.QuizOption{
						{ID: "a", Text: "British Constitution"},
						{ID: "b", Text: "US Constitution"},
						{ID: "c", Text: "Soviet Constitution"},
						{ID: "d", Text: "Chinese Constitution"},
					},
					CorrectOption: "d",
					Explanation:   "The Indian Constitution drew inspiration from the British, US, Irish, Canadian, and Soviet constitutions, but not from the Chinese Constitution.",
				},
				{
					Position: 4,
					Question: "Which movement led by Mahatma Gandhi called for the British to leave India?",
					Options: []models.QuizOption{
						{ID: "a", Text: "Non-Cooperation Movement"},
						{ID: "b", Text: "Civil Disobedience Movement"},
						{ID: "c", Text: "Quit India Movement"},
						{ID: "d", Text: "Swadeshi Movement"},
					},
					CorrectOption: "c",
					Explanation:   "The Quit India Movement, launched in August 1942, called for immediate independence from British rule.",
				},
				{
					Position: 5,
					Question: "Which committee's recommendations formed the basis for the Fundamental Rights in the Indian Constitution?",
					Options: []models.QuizOption{
						{ID: "a", Text: "Union Powers Committee"},
						{ID: "b", Text: "Drafting Committee"},
						{ID: "c", Text: "Advisory Committee on Fundamental Rights and Minorities"},
						{ID: "d", Text: "Provincial Constitution Committee"},
					},
					CorrectOption: "c",
					Explanation:   "The Advisory Committee on Fundamental Rights and Minorities, headed by Sardar Vallabhbhai Patel, made the recommendations that formed the basis for Fundamental Rights.",
				},
			},
		},
		{
			ModuleID:  1,
			ChapterID: 2,
			Title:     "Constituent Assembly Quiz",
			Questions: []models.QuizQuestion{
				{
					Position: 1,
					Question: "Who was the President of the Constituent Assembly?",
					Options: []models.QuizOption{
						{ID: "a", Text: "Dr. B.R. Ambedkar"},
						{ID: "b", Text: "Jawaharlal Nehru"},
						{ID: "c", Text: "Dr. Rajendra Prasad"},
						{ID: "d", Text: "Sardar Vallabhbhai Patel"},
					},
					CorrectOption: "c",
					Explanation:   "Dr. Rajendra Prasad was elected as the permanent President of the Constituent Assembly on 11 December 1946.",
				},
				{
					Position: 2,
					Question: "When did the Constituent Assembly hold its first meeting?",
					Options: []models.QuizOption{
						{ID: "a", Text: "August 15, 1947"},
						{ID: "b", Text: "December 9, 1946"},
						{ID: "c", Text: "January 26, 1950"},
						{ID: "d", Text: "November 26, 1949"},
					},
					CorrectOption: "b",
					Explanation:   "The Constituent Assembly held its first meeting on December 9, 1946, with Dr. Sachchidananda Sinha as the temporary President.",
				},
				{
					Position: 3,
					Question: "Who was the Chairman of the Drafting Committee of the Constituent Assembly?",
					Options: []models.QuizOption{
						{ID: "a", Text: "Dr. B.R. Ambedkar"},
						{ID: "b", Text: "Jawaharlal Nehru"},
						{ID: "c", Text: "Dr. Rajendra Prasad"},
						{ID: "d", Text: "Sardar Vallabhbhai Patel"},
					},
					CorrectOption: "a",
					Explanation:   "Dr. B.R. Ambedkar was appointed Chairman of the Drafting Committee, responsible for preparing the draft of the Indian Constitution.",
				},
				{
					Position: 4,
					Question: "How many members did the Constituent Assembly have after partition?",
					Options: []models.QuizOption{
						{ID: "a", Text: "389"},
						{ID: "b", Text: "299"},
						{ID: "c", Text: "311"},
						{ID: "d", Text: "275"},
					},
					CorrectOption: "b",
					Explanation:   "After partition, the Constituent Assembly was reduced to 299 members as some members went to Pakistan.",
				},
				{
					Position: 5,
					Question: "When was the Constitution of India adopted by the Constituent Assembly?",
					Options: []models.QuizOption{
						{ID: "a", Text: "August 15, 1947"},
						{ID: "b", Text: "January 26, 1950"},
						{ID: "c", Text: "November 26, 1949"},
						{ID: "d", Text: "December 9, 1946"},
					},
					CorrectOption: "c",
					Explanation:   "The Constitution was adopted on November 26, 1949, now celebrated as Constitution Day.",
				},
			},
		},
		{
			ModuleID:  2,
			ChapterID: 1,
			Title:     "Right to Equality Quiz",
			Questions: []models.QuizQuestion{
				{
					Position: 1,
					Question: "Which article of the Indian Constitution guarantees equality before law?",
					Options: []models.QuizOption{
						{ID: "a", Text: "Article 14"},
						{ID: "b", Text: "Article 15"},
						{ID: "c", Text: "Article 16"},
						{ID: "d", Text: "Article 17"},
					},
					CorrectOption: "a",
					Explanation:   "Article 14 states that the State shall not deny to any person equality before the law or the equal protection of the laws within the territory of India.",
				},
				{
					Position: 2,
					Question: "Article 15 of the Indian Constitution prohibits discrimination on grounds of:",
					Options: []models.QuizOption{
						{ID: "a", Text: "Only religion and caste"},
						{ID: "b", Text: "Only sex and place of birth"},
						{ID: "c", Text: "Religion, race, caste, sex, and place of birth"},
						{ID: "d", Text: "Only race and religion"},
					},
					CorrectOption: "c",
					Explanation:   "Article 15 prohibits discrimination on grounds of religion, race, caste, sex, and place of birth.",
				},
				{
					Position: 3,
					Question: "Which article abolishes untouchability?",
					Options: []models.QuizOption{
						{ID: "a", Text: "Article 14"},
						{ID: "b", Text: "Article 15"},
						{ID: "c", Text: "Article 16"},
						{ID: "d", Text: "Article 17"},
					},
					CorrectOption: "d",
					Explanation:   "Article 17 abolishes untouchability and forbids its practice in any form.",
				},
				{
					Position: 4,
					Question: "Article 16 of the Constitution deals with:",
					Options: []models.QuizOption{
						{ID: "a", Text: "Equality before law"},
						{ID: "b", Text: "Prohibition of discrimination"},
						{ID: "c", Text: "Equality of opportunity in public employment"},
						{ID: "d", Text: "Abolition of titles"},
					},
					CorrectOption: "c",
					Explanation:   "Article 16 guarantees equality of opportunity in matters of public employment.",
				},
				{
					Position: 5,
					Question: "Which of the following is NOT a ground of prohibition of discrimination under Article 15?",
					Options: []models.QuizOption{
						{ID: "a", Text: "Religion"},
						{ID: "b", Text: "Race"},
						{ID: "c", Text: "Economic status"},
						{ID: "d", Text: "Sex"},
					},
					CorrectOption: "c",
					Explanation:   "Article 15 lists religion, race, caste, sex, and place of birth; economic status is not among them.",
				},
			},
		},
	}
}
