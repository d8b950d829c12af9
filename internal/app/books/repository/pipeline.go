package repository

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Чистые построители агрегационных pipeline для коллекции reviews.
// Выделены отдельно, чтобы их можно было проверять без подключения к MongoDB.

// BookReviewsPipeline собирает статистику отзывов по одной книге:
// средняя оценка и все тексты отзывов в порядке хранения
func BookReviewsPipeline(bookID int) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.D{
			{Key: "bookId", Value: bookID},
		}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$bookId"},
			{Key: "rating", Value: bson.D{{Key: "$avg", Value: "$rating"}}},
			{Key: "reviews", Value: bson.D{{Key: "$push", Value: "$review"}}},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: "bookId", Value: "$_id"},
			{Key: "rating", Value: 1},
			{Key: "reviews", Value: 1},
			{Key: "_id", Value: 0},
		}}},
	}
}

// MonthlyAveragesPipeline считает среднюю оценку книги по календарным месяцам.
// Ключ группировки - строка "YYYY-MM": октябрь и ноябрь одного года дают две
// группы, а октябрь разных лет никогда не сливается в одну
func MonthlyAveragesPipeline(bookID int) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.D{
			{Key: "bookId", Value: bookID},
		}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.D{{Key: "$dateToString", Value: bson.D{
				{Key: "format", Value: "%Y-%m"},
				{Key: "date", Value: "$createdAt"},
			}}}},
			{Key: "rating", Value: bson.D{{Key: "$avg", Value: "$rating"}}},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: "month", Value: "$_id"},
			{Key: "rating", Value: 1},
			{Key: "_id", Value: 0},
		}}},
		{{Key: "$sort", Value: bson.D{
			{Key: "month", Value: 1},
		}}},
	}
}

// TopBooksPipeline собирает статистику по всем книгам с отзывами,
// сортирует по убыванию средней оценки и обрезает до amount групп.
// Порядок книг с равной оценкой не определен
func TopBooksPipeline(amount int) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$bookId"},
			{Key: "rating", Value: bson.D{{Key: "$avg", Value: "$rating"}}},
			{Key: "reviews", Value: bson.D{{Key: "$push", Value: "$review"}}},
		}}},
		{{Key: "$sort", Value: bson.D{
			{Key: "rating", Value: -1},
		}}},
		{{Key: "$limit", Value: amount}},
		{{Key: "$project", Value: bson.D{
			{Key: "bookId", Value: "$_id"},
			{Key: "rating", Value: 1},
			{Key: "reviews", Value: 1},
			{Key: "_id", Value: 0},
		}}},
	}
}
