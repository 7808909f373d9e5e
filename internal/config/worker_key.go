package config

type WorkerKeyStruct struct {
	QuestionStatsQueue string
}

var WorkerKey = &WorkerKeyStruct{
	QuestionStatsQueue: "persist_question_stats_queue",
}
